package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"scenelint/internal/registry"
	"scenelint/internal/resolve"
)

var registryCmd = &cobra.Command{
	Use:   "registry [flags]",
	Short: "Inspect the embedded command registry",
	Long:  `List the namespaces and commands the validator checks against, or resolve a single token the way the validator would`,
	RunE:  runRegistry,
}

func init() {
	registryCmd.Flags().String("tag", "", "show only the namespace with this tag")
	registryCmd.Flags().String("resolve", "", "resolve a command token against the namespace given by --tag")
	registryCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type namespacePayload struct {
	Tag      string   `json:"tag"`
	Module   string   `json:"module"`
	Commands []string `json:"commands"`
}

type registryPayload struct {
	Fingerprint string             `json:"fingerprint"`
	Namespaces  []namespacePayload `json:"namespaces"`
}

func runRegistry(cmd *cobra.Command, args []string) error {
	tag, err := cmd.Flags().GetString("tag")
	if err != nil {
		return fmt.Errorf("failed to get tag flag: %w", err)
	}
	token, err := cmd.Flags().GetString("resolve")
	if err != nil {
		return fmt.Errorf("failed to get resolve flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	reg := registry.Default()

	if token != "" {
		if tag == "" {
			tag = registry.TagPrimary
		}
		ns, ok := reg.Namespace(tag)
		if !ok {
			return fmt.Errorf("unknown namespace tag %q", tag)
		}
		res := resolve.Command(ns, token)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s", token, res.Status)
		if res.Canonical != "" && res.Canonical != token {
			fmt.Fprintf(cmd.OutOrStdout(), " -> %s", res.Canonical)
		}
		if res.Status == resolve.StatusSuggestion {
			fmt.Fprintf(cmd.OutOrStdout(), " (%.2f)", res.Score)
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	}

	tags := reg.Tags()
	if tag != "" {
		if _, ok := reg.Namespace(tag); !ok {
			return fmt.Errorf("unknown namespace tag %q", tag)
		}
		tags = []string{tag}
	}

	fp := reg.Fingerprint()
	if format == "json" {
		payload := registryPayload{Fingerprint: hex.EncodeToString(fp[:])}
		for _, t := range tags {
			ns, _ := reg.Namespace(t)
			payload.Namespaces = append(payload.Namespaces, namespacePayload{
				Tag:      ns.Tag(),
				Module:   ns.Module(),
				Commands: ns.Commands(),
			})
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "registry %s\n", hex.EncodeToString(fp[:8]))
	for _, t := range tags {
		ns, _ := reg.Namespace(t)
		commands := ns.Commands()
		fmt.Fprintf(cmd.OutOrStdout(), "\n[%s] %s: %d command(s)\n", ns.Tag(), ns.Module(), len(commands))
		for _, c := range commands {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", c)
		}
	}
	return nil
}
