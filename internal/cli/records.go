package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/app"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/models"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/services"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List service records from the local cache",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		search, _ := cmd.Flags().GetString("search")
		technician, _ := cmd.Flags().GetString("technician")
		assistType, _ := cmd.Flags().GetString("type")
		createdBy, _ := cmd.Flags().GetString("user")

		recs, err := a.Records.GetAll(cmd.Context(), services.RecordFilter{
			Search:         search,
			Technician:     technician,
			AssistanceType: models.AssistanceType(assistType),
			CreatedBy:      createdBy,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tORDER\tCLIENT\tEQUIPMENT\tTECHNICIAN\tOPENED")
		for _, rec := range recs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				rec.ID, rec.OrderNumber, rec.Client, rec.Equipment, rec.Technician, rec.CallOpeningDate)
		}
		return w.Flush()
	}),
}

var showCmd = &cobra.Command{
	Use:   "show <record-id>",
	Short: "Print one service record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		rec, err := a.Records.GetByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("record %s not found", args[0])
		}

		out, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}),
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a service record",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		rec := &models.ServiceRecord{}
		applyRecordFlags(cmd, rec)
		rec.CreatedBy, _ = cmd.Flags().GetString("user")

		created, err := a.Records.Create(cmd.Context(), rec)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", created.ID)
		return nil
	}),
}

var updateCmd = &cobra.Command{
	Use:   "update <record-id>",
	Short: "Update fields of a service record",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		existing, err := a.Records.GetByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("record %s not found", args[0])
		}

		applyRecordFlags(cmd, existing)

		updated, err := a.Records.Update(cmd.Context(), args[0], existing)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", updated.ID)
		return nil
	}),
}

var deleteCmd = &cobra.Command{
	Use:   "delete <record-id>",
	Short: "Delete a service record",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		if err := a.Records.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	}),
}

// applyRecordFlags overlays rec with every record flag the user set.
func applyRecordFlags(cmd *cobra.Command, rec *models.ServiceRecord) {
	set := func(name string, dst *string) {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
	set("order", &rec.OrderNumber)
	set("client", &rec.Client)
	set("equipment", &rec.Equipment)
	set("chassis", &rec.ChassisPlate)
	set("opened", &rec.CallOpeningDate)
	set("technician", &rec.Technician)
	set("location", &rec.AssistanceLocation)
	set("contact", &rec.ContactPerson)
	set("phone", &rec.Phone)
	set("issue", &rec.ReportedIssue)
	set("supplier", &rec.Supplier)
	set("part", &rec.Part)
	set("observations", &rec.Observations)
	set("solution", &rec.TechnicalSolution)

	if cmd.Flags().Changed("type") {
		v, _ := cmd.Flags().GetString("type")
		rec.AssistanceType = models.AssistanceType(v)
	}
}

func recordFlags(cmd *cobra.Command) {
	cmd.Flags().String("order", "", "order number")
	cmd.Flags().String("client", "", "client name")
	cmd.Flags().String("equipment", "", "equipment description")
	cmd.Flags().String("chassis", "", "chassis plate")
	cmd.Flags().String("opened", "", "call opening date (YYYY-MM-DD)")
	cmd.Flags().String("technician", "", "assigned technician")
	cmd.Flags().String("type", "", "assistance type (COURTESY, ASSISTANCE, NOT_APPLICABLE)")
	cmd.Flags().String("location", "", "assistance location")
	cmd.Flags().String("contact", "", "contact person")
	cmd.Flags().String("phone", "", "contact phone")
	cmd.Flags().String("issue", "", "reported issue")
	cmd.Flags().String("supplier", "", "supplier")
	cmd.Flags().String("part", "", "part")
	cmd.Flags().String("observations", "", "observations")
	cmd.Flags().String("solution", "", "technical solution")
}

func init() {
	recordFlags(addCmd)
	addCmd.Flags().String("user", "", "username creating the record")
	recordFlags(updateCmd)

	listCmd.Flags().String("search", "", "substring filter on order, client, equipment, issue")
	listCmd.Flags().String("technician", "", "filter by technician")
	listCmd.Flags().String("type", "", "filter by assistance type")
	listCmd.Flags().String("user", "", "filter by creator")

	rootCmd.AddCommand(listCmd, showCmd, addCmd, updateCmd, deleteCmd)
}
