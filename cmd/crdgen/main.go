// Command crdgen prints the WorkerGroup CustomResourceDefinition as YAML.
//
//	crdgen | kubectl apply -f -
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/probelet/probelet-operator/pkg/crd"
)

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(stdout io.Writer) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:           "crdgen",
		Short:         "Print the WorkerGroup CustomResourceDefinition",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output == "" {
				return writeCRD(stdout)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := writeCRD(f); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the CRD to this file instead of stdout")

	return cmd
}

func writeCRD(w io.Writer) error {
	doc, err := crd.YAML()
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, "---\n"); err != nil {
		return fmt.Errorf("failed to write CRD: %w", err)
	}
	if _, err := w.Write(doc); err != nil {
		return fmt.Errorf("failed to write CRD: %w", err)
	}
	return nil
}
