// Supplier commands manage the supplier catalog, garment-supplier links,
// price offers, and sample rounds.
package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"stitchcore/internal/core"
)

var supplierCmd = &cobra.Command{
	Use:   "supplier",
	Short: "Manage suppliers and garment engagements",
}

var (
	supplierName    string
	supplierEmail   string
	supplierStatus  string
	offerPrice      string
	offerCurrency   string
	offerLeadTime   int
	sampleStatus    string
	sampleNotes     string
)

var supplierAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a supplier",
	RunE: func(cmd *cobra.Command, args []string) error {
		supplier := core.Supplier{Name: supplierName}
		if supplierEmail != "" {
			supplier.ContactEmail = &supplierEmail
		}
		created, res, err := svc.CreateSupplier(cmd.Context(), supplier)
		if err != nil {
			return err
		}
		warnOnViolations(res)
		return emit(created, fmt.Sprintf("Created supplier %d (%s)", created.ID, created.Name))
	},
}

var supplierListCmd = &cobra.Command{
	Use:   "list",
	Short: "List suppliers by name",
	RunE: func(cmd *cobra.Command, args []string) error {
		suppliers := svc.ListSuppliers(cmd.Context())
		return emitList(suppliers, func(s core.Supplier) string {
			email := ""
			if s.ContactEmail != nil {
				email = *s.ContactEmail
			}
			return fmt.Sprintf("%d\t%s\t%s", s.ID, s.Name, email)
		})
	},
}

var supplierDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a supplier and its garment engagements",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "supplier id")
		if err != nil {
			return err
		}
		res, err := svc.DeleteSupplier(cmd.Context(), id)
		if err != nil {
			return err
		}
		warnOnViolations(res)
		fmt.Fprintf(output, "Deleted supplier %d\n", id)
		return nil
	},
}

var supplierLinkCmd = &cobra.Command{
	Use:   "link <garment-id> <supplier-id>",
	Short: "Engage a supplier for a garment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		garmentID, err := parseID(args[0], "garment id")
		if err != nil {
			return err
		}
		supplierID, err := parseID(args[1], "supplier id")
		if err != nil {
			return err
		}
		status := core.SupplierStatus(strings.ToUpper(supplierStatus))
		link, res, err := svc.LinkSupplier(cmd.Context(), garmentID, supplierID, status)
		if err != nil {
			return err
		}
		warnOnViolations(res)
		return emit(link, fmt.Sprintf("Linked supplier %d to garment %d as %s (link %d)", supplierID, garmentID, link.Status, link.ID))
	},
}

var supplierStatusCmd = &cobra.Command{
	Use:   "status <link-id> <status>",
	Short: "Update a garment-supplier engagement status",
	Long:  `Status moves a link through OFFERED, SAMPLING, APPROVED, REJECTED, IN_STORE.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		linkID, err := parseID(args[0], "link id")
		if err != nil {
			return err
		}
		link, res, err := svc.UpdateSupplierStatus(cmd.Context(), linkID, core.SupplierStatus(strings.ToUpper(args[1])))
		if err != nil {
			return err
		}
		warnOnViolations(res)
		return emit(link, fmt.Sprintf("Link %d is now %s", link.ID, link.Status))
	},
}

var supplierOfferCmd = &cobra.Command{
	Use:   "offer <link-id>",
	Short: "Record a price offer on a garment-supplier link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		linkID, err := parseID(args[0], "link id")
		if err != nil {
			return err
		}
		price, err := decimal.NewFromString(offerPrice)
		if err != nil {
			return fmt.Errorf("invalid price %q", offerPrice)
		}
		offer, res, err := svc.AddSupplierOffer(cmd.Context(), core.SupplierOffer{
			GarmentSupplierID: linkID,
			Price:             price,
			Currency:          offerCurrency,
			LeadTimeDays:      offerLeadTime,
		})
		if err != nil {
			return err
		}
		warnOnViolations(res)
		return emit(offer, fmt.Sprintf("Recorded offer %d: %s %s, %d days lead", offer.ID, offer.Price, offer.Currency, offer.LeadTimeDays))
	},
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Manage sample rounds on garment-supplier links",
}

var sampleAddCmd = &cobra.Command{
	Use:   "add <link-id>",
	Short: "Request a sample round",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		linkID, err := parseID(args[0], "link id")
		if err != nil {
			return err
		}
		sample := core.SampleSet{GarmentSupplierID: linkID}
		if sampleNotes != "" {
			sample.Notes = &sampleNotes
		}
		created, res, err := svc.AddSampleSet(cmd.Context(), sample)
		if err != nil {
			return err
		}
		warnOnViolations(res)
		return emit(created, fmt.Sprintf("Requested sample %d on link %d", created.ID, created.GarmentSupplierID))
	},
}

var sampleUpdateCmd = &cobra.Command{
	Use:   "update <sample-id>",
	Short: "Move a sample round through REQUESTED, RECEIVED, PASSED, FAILED",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sampleID, err := parseID(args[0], "sample id")
		if err != nil {
			return err
		}
		var input core.UpdateSampleSetInput
		flags := cmd.Flags()
		if flags.Changed("status") {
			status := core.SampleStatus(strings.ToUpper(sampleStatus))
			input.Status = &status
		}
		if flags.Changed("notes") {
			input.Notes = &sampleNotes
		}
		sample, res, err := svc.UpdateSampleSet(cmd.Context(), sampleID, input)
		if err != nil {
			return err
		}
		warnOnViolations(res)
		return emit(sample, fmt.Sprintf("Sample %d is now %s", sample.ID, sample.Status))
	},
}

var supplierEngagementsCmd = &cobra.Command{
	Use:   "engagements <garment-id>",
	Short: "Show a garment's supplier links with offers and samples",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		garmentID, err := parseID(args[0], "garment id")
		if err != nil {
			return err
		}
		engagements, err := svc.SupplierEngagements(cmd.Context(), garmentID)
		if err != nil {
			return err
		}
		return emitList(engagements, func(e core.SupplierEngagement) string {
			return fmt.Sprintf("%d\t%s\t%s\t%d offers\t%d samples", e.Link.ID, e.Supplier.Name, e.Link.Status, len(e.Offers), len(e.Samples))
		})
	},
}

func init() {
	supplierAddCmd.Flags().StringVar(&supplierName, "name", "", "supplier name (required)")
	supplierAddCmd.Flags().StringVar(&supplierEmail, "email", "", "contact email")
	_ = supplierAddCmd.MarkFlagRequired("name")

	supplierLinkCmd.Flags().StringVar(&supplierStatus, "status", "", "initial status (default OFFERED)")

	supplierOfferCmd.Flags().StringVar(&offerPrice, "price", "", "unit price (required)")
	supplierOfferCmd.Flags().StringVar(&offerCurrency, "currency", "", "currency code (default USD)")
	supplierOfferCmd.Flags().IntVar(&offerLeadTime, "lead-time", 0, "lead time in days")
	_ = supplierOfferCmd.MarkFlagRequired("price")

	sampleAddCmd.Flags().StringVar(&sampleNotes, "notes", "", "sample notes")
	sampleUpdateCmd.Flags().StringVar(&sampleStatus, "status", "", "new sample status")
	sampleUpdateCmd.Flags().StringVar(&sampleNotes, "notes", "", "new sample notes")

	sampleCmd.AddCommand(sampleAddCmd)
	sampleCmd.AddCommand(sampleUpdateCmd)

	supplierCmd.AddCommand(supplierAddCmd)
	supplierCmd.AddCommand(supplierListCmd)
	supplierCmd.AddCommand(supplierDeleteCmd)
	supplierCmd.AddCommand(supplierLinkCmd)
	supplierCmd.AddCommand(supplierStatusCmd)
	supplierCmd.AddCommand(supplierOfferCmd)
	supplierCmd.AddCommand(sampleCmd)
	supplierCmd.AddCommand(supplierEngagementsCmd)
}
