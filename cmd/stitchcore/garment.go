// Garment commands cover creation, lifecycle updates, composition, and
// attribute assignment.
package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"stitchcore/internal/core"
)

var garmentCmd = &cobra.Command{
	Use:   "garment",
	Short: "Manage garment designs",
}

var (
	garmentName       string
	garmentCategory   string
	garmentState      string
	garmentBaseDesign int64
	garmentChangeNote string
	garmentAttributes []int64
)

var garmentCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new garment design",
	Long: `Create registers a new garment design, starting in CONCEPT unless
--state says otherwise. Attributes supplied with --attribute are validated
as one set; a conflicting pair aborts the whole creation.

Example:
  stitchcore garment create --name "Raglan Tee" --category tops
  stitchcore garment create --name "Raglan Tee v2" --category tops --base-design 1 --change-note "longer sleeves"`,
	RunE: runGarmentCreate,
}

func runGarmentCreate(cmd *cobra.Command, args []string) error {
	input := core.CreateGarmentInput{
		Name:         garmentName,
		Category:     garmentCategory,
		AttributeIDs: garmentAttributes,
	}
	if garmentState != "" {
		input.LifecycleState = core.LifecycleState(strings.ToUpper(garmentState))
	}
	if garmentBaseDesign > 0 {
		input.BaseDesignID = &garmentBaseDesign
	}
	if garmentChangeNote != "" {
		input.ChangeNote = &garmentChangeNote
	}
	garment, res, err := svc.CreateGarment(cmd.Context(), input)
	if err != nil {
		return err
	}
	warnOnViolations(res)
	return emit(garment, fmt.Sprintf("Created garment %d (%s, %s)", garment.ID, garment.Name, garment.LifecycleState))
}

var garmentGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a garment with composition, attributes, variations, and suppliers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "garment id")
		if err != nil {
			return err
		}
		detail, found, err := svc.GetGarment(cmd.Context(), id)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("garment %d not found", id)
		}
		return emit(detail, formatDetail(detail))
	},
}

func formatDetail(d core.GarmentDetail) string {
	var b strings.Builder
	g := d.Garment
	fmt.Fprintf(&b, "Garment %d: %s [%s] %s\n", g.ID, g.Name, g.Category, g.LifecycleState)
	if g.BaseDesignID != nil {
		fmt.Fprintf(&b, "  variation of garment %d\n", *g.BaseDesignID)
	}
	fmt.Fprintf(&b, "  composition (%s%%):\n", d.TotalPercentage())
	for _, line := range d.Materials {
		fmt.Fprintf(&b, "    %s: %s%%\n", line.Material.Name, line.Percentage)
	}
	if len(d.Attributes) > 0 {
		names := make([]string, len(d.Attributes))
		for i, a := range d.Attributes {
			names[i] = a.Name
		}
		fmt.Fprintf(&b, "  attributes: %s\n", strings.Join(names, ", "))
	}
	for _, v := range d.Variations {
		fmt.Fprintf(&b, "  variation %d: %s\n", v.ID, v.Name)
	}
	for _, e := range d.Suppliers {
		fmt.Fprintf(&b, "  supplier %s: %s (%d offers, %d samples)\n", e.Supplier.Name, e.Link.Status, len(e.Offers), len(e.Samples))
	}
	return strings.TrimRight(b.String(), "\n")
}

var garmentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List garments, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		garments := svc.ListGarments(cmd.Context())
		return emitList(garments, func(g core.Garment) string {
			return fmt.Sprintf("%d\t%s\t%s\t%s", g.ID, g.Name, g.Category, g.LifecycleState)
		})
	},
}

var garmentUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update garment fields or promote its lifecycle state",
	Long: `Update applies only the flags that were set. Promotion to APPROVED or
MASS_PRODUCTION requires the material composition to total exactly 100%.
With no flags the garment is left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runGarmentUpdate,
}

func runGarmentUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "garment id")
	if err != nil {
		return err
	}
	var input core.UpdateGarmentInput
	flags := cmd.Flags()
	if flags.Changed("name") {
		input.Name = &garmentName
	}
	if flags.Changed("category") {
		input.Category = &garmentCategory
	}
	if flags.Changed("state") {
		state := core.LifecycleState(strings.ToUpper(garmentState))
		input.LifecycleState = &state
	}
	if flags.Changed("base-design") {
		input.BaseDesignID = &garmentBaseDesign
	}
	if flags.Changed("change-note") {
		input.ChangeNote = &garmentChangeNote
	}
	garment, applied, res, err := svc.UpdateGarment(cmd.Context(), id, input)
	if err != nil {
		return err
	}
	warnOnViolations(res)
	if !applied {
		return emit(garment, fmt.Sprintf("Garment %d unchanged", garment.ID))
	}
	return emit(garment, fmt.Sprintf("Updated garment %d (%s, %s)", garment.ID, garment.Name, garment.LifecycleState))
}

var garmentDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a garment and its composition, links, and supplier history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "garment id")
		if err != nil {
			return err
		}
		res, err := svc.DeleteGarment(cmd.Context(), id)
		if err != nil {
			return err
		}
		warnOnViolations(res)
		fmt.Fprintf(output, "Deleted garment %d\n", id)
		return nil
	},
}

var garmentAddMaterialCmd = &cobra.Command{
	Use:   "add-material <garment-id> <material-id> <percentage>",
	Short: "Set a material's percentage share of a garment",
	Long: `Add-material assigns a material share, replacing any existing share of
the same material. The garment's composition may never exceed 100%.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		garmentID, err := parseID(args[0], "garment id")
		if err != nil {
			return err
		}
		materialID, err := parseID(args[1], "material id")
		if err != nil {
			return err
		}
		percentage, err := decimal.NewFromString(args[2])
		if err != nil {
			return fmt.Errorf("invalid percentage %q", args[2])
		}
		lines, res, err := svc.AddMaterialToGarment(cmd.Context(), garmentID, materialID, percentage)
		if err != nil {
			return err
		}
		warnOnViolations(res)
		return emitList(lines, func(l core.MaterialLine) string {
			return fmt.Sprintf("%s\t%s%%", l.Material.Name, l.Percentage)
		})
	},
}

var garmentAddAttributeCmd = &cobra.Command{
	Use:   "add-attribute <garment-id> <attribute-id>",
	Short: "Assign an attribute to a garment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		garmentID, err := parseID(args[0], "garment id")
		if err != nil {
			return err
		}
		attributeID, err := parseID(args[1], "attribute id")
		if err != nil {
			return err
		}
		attrs, res, err := svc.AddAttributeToGarment(cmd.Context(), garmentID, attributeID)
		if err != nil {
			return err
		}
		warnOnViolations(res)
		return emitList(attrs, func(a core.Attribute) string {
			return fmt.Sprintf("%d\t%s", a.ID, a.Name)
		})
	},
}

var garmentVariationsCmd = &cobra.Command{
	Use:   "variations <id>",
	Short: "List garments derived from a base design",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "garment id")
		if err != nil {
			return err
		}
		variations, err := svc.ListVariations(cmd.Context(), id)
		if err != nil {
			return err
		}
		return emitList(variations, func(g core.Garment) string {
			return fmt.Sprintf("%d\t%s\t%s", g.ID, g.Name, g.LifecycleState)
		})
	},
}

func init() {
	garmentCreateCmd.Flags().StringVar(&garmentName, "name", "", "garment name (required)")
	garmentCreateCmd.Flags().StringVar(&garmentCategory, "category", "", "garment category (required)")
	garmentCreateCmd.Flags().StringVar(&garmentState, "state", "", "initial lifecycle state (default CONCEPT)")
	garmentCreateCmd.Flags().Int64Var(&garmentBaseDesign, "base-design", 0, "base design garment id for variations")
	garmentCreateCmd.Flags().StringVar(&garmentChangeNote, "change-note", "", "note describing the variation")
	garmentCreateCmd.Flags().Int64SliceVar(&garmentAttributes, "attribute", nil, "attribute id to assign (repeatable)")
	_ = garmentCreateCmd.MarkFlagRequired("name")
	_ = garmentCreateCmd.MarkFlagRequired("category")

	garmentUpdateCmd.Flags().StringVar(&garmentName, "name", "", "new name")
	garmentUpdateCmd.Flags().StringVar(&garmentCategory, "category", "", "new category")
	garmentUpdateCmd.Flags().StringVar(&garmentState, "state", "", "new lifecycle state")
	garmentUpdateCmd.Flags().Int64Var(&garmentBaseDesign, "base-design", 0, "new base design id")
	garmentUpdateCmd.Flags().StringVar(&garmentChangeNote, "change-note", "", "new change note")

	garmentCmd.AddCommand(garmentCreateCmd)
	garmentCmd.AddCommand(garmentGetCmd)
	garmentCmd.AddCommand(garmentListCmd)
	garmentCmd.AddCommand(garmentUpdateCmd)
	garmentCmd.AddCommand(garmentDeleteCmd)
	garmentCmd.AddCommand(garmentAddMaterialCmd)
	garmentCmd.AddCommand(garmentAddAttributeCmd)
	garmentCmd.AddCommand(garmentVariationsCmd)
}
