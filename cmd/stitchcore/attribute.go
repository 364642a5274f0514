// Attribute commands manage the attribute catalog and the symmetric
// incompatibility pairs between attributes.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stitchcore/internal/core"
)

var attributeCmd = &cobra.Command{
	Use:   "attribute",
	Short: "Manage design attributes and incompatibilities",
}

var attributeName string

var attributeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a design attribute",
	RunE: func(cmd *cobra.Command, args []string) error {
		attribute, res, err := svc.CreateAttribute(cmd.Context(), attributeName)
		if err != nil {
			return err
		}
		warnOnViolations(res)
		return emit(attribute, fmt.Sprintf("Created attribute %d (%s)", attribute.ID, attribute.Name))
	},
}

var attributeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List attributes by name",
	RunE: func(cmd *cobra.Command, args []string) error {
		attributes := svc.ListAttributes(cmd.Context())
		return emitList(attributes, func(a core.Attribute) string {
			return fmt.Sprintf("%d\t%s", a.ID, a.Name)
		})
	},
}

var attributeDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an attribute not assigned to any garment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "attribute id")
		if err != nil {
			return err
		}
		res, err := svc.DeleteAttribute(cmd.Context(), id)
		if err != nil {
			return err
		}
		warnOnViolations(res)
		fmt.Fprintf(output, "Deleted attribute %d\n", id)
		return nil
	},
}

var incompatibilityCmd = &cobra.Command{
	Use:   "incompatibility",
	Short: "Manage attribute incompatibility pairs",
}

var incompatibilityAddCmd = &cobra.Command{
	Use:   "add <attribute-id> <attribute-id>",
	Short: "Record two attributes as mutually incompatible",
	Long: `Add records a symmetric incompatibility: the pair applies in both
directions and re-recording it in either order is a no-op.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := parseID(args[0], "attribute id")
		if err != nil {
			return err
		}
		b, err := parseID(args[1], "attribute id")
		if err != nil {
			return err
		}
		pair, res, err := svc.RecordIncompatibility(cmd.Context(), a, b)
		if err != nil {
			return err
		}
		warnOnViolations(res)
		return emit(pair, fmt.Sprintf("Attributes %d and %d are incompatible", pair.AttributeA, pair.AttributeB))
	},
}

var incompatibilityCheckCmd = &cobra.Command{
	Use:   "check <attribute-id>...",
	Short: "Check whether a set of attributes can coexist",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]int64, 0, len(args))
		for _, arg := range args {
			id, err := parseID(arg, "attribute id")
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		report, err := svc.CheckAttributeSet(cmd.Context(), ids)
		if err != nil {
			return err
		}
		if report.Valid {
			return emit(report, "Attribute set is compatible")
		}
		lines := make([]string, 0, len(report.Conflicts))
		for _, c := range report.Conflicts {
			lines = append(lines, fmt.Sprintf("  %s (%d) conflicts with %s (%d)", c.NameA, c.AttributeA, c.NameB, c.AttributeB))
		}
		return emit(report, "Attribute set has conflicts:\n"+strings.Join(lines, "\n"))
	},
}

func init() {
	attributeAddCmd.Flags().StringVar(&attributeName, "name", "", "attribute name (required)")
	_ = attributeAddCmd.MarkFlagRequired("name")

	incompatibilityCmd.AddCommand(incompatibilityAddCmd)
	incompatibilityCmd.AddCommand(incompatibilityCheckCmd)

	attributeCmd.AddCommand(attributeAddCmd)
	attributeCmd.AddCommand(attributeListCmd)
	attributeCmd.AddCommand(attributeDeleteCmd)
	attributeCmd.AddCommand(incompatibilityCmd)
}
