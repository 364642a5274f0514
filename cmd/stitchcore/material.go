package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stitchcore/internal/core"
)

var materialCmd = &cobra.Command{
	Use:   "material",
	Short: "Manage the material catalog",
}

var materialName string

var materialAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a material",
	RunE: func(cmd *cobra.Command, args []string) error {
		material, res, err := svc.CreateMaterial(cmd.Context(), materialName)
		if err != nil {
			return err
		}
		warnOnViolations(res)
		return emit(material, fmt.Sprintf("Created material %d (%s)", material.ID, material.Name))
	},
}

var materialListCmd = &cobra.Command{
	Use:   "list",
	Short: "List materials by name",
	RunE: func(cmd *cobra.Command, args []string) error {
		materials := svc.ListMaterials(cmd.Context())
		return emitList(materials, func(m core.Material) string {
			return fmt.Sprintf("%d\t%s", m.ID, m.Name)
		})
	},
}

var materialDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a material not referenced by any garment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "material id")
		if err != nil {
			return err
		}
		res, err := svc.DeleteMaterial(cmd.Context(), id)
		if err != nil {
			return err
		}
		warnOnViolations(res)
		fmt.Fprintf(output, "Deleted material %d\n", id)
		return nil
	},
}

func init() {
	materialAddCmd.Flags().StringVar(&materialName, "name", "", "material name (required)")
	_ = materialAddCmd.MarkFlagRequired("name")

	materialCmd.AddCommand(materialAddCmd)
	materialCmd.AddCommand(materialListCmd)
	materialCmd.AddCommand(materialDeleteCmd)
}
