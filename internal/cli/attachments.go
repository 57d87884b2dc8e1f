package cli

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/app"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/models"
)

var attachCmd = &cobra.Command{
	Use:   "attach <record-id> <file>",
	Short: "Attach a file to a service record",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}

		mimetype := mime.TypeByExtension(filepath.Ext(args[1]))
		if mimetype == "" {
			mimetype = http.DetectContentType(data)
		}

		uploadedBy, _ := cmd.Flags().GetString("user")
		att, err := a.Attachments.Upload(cmd.Context(), args[0], models.AttachmentFile{
			Buffer:   data,
			Mimetype: mimetype,
			Filename: filepath.Base(args[1]),
		}, uploadedBy)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "attached %s (%s, %d bytes)\n", att.Filename, att.ID, att.Size)
		return nil
	}),
}

var attachmentsCmd = &cobra.Command{
	Use:   "attachments <record-id>",
	Short: "List attachments of a service record",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		atts, err := a.Attachments.GetAllByRecordID(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tFILENAME\tMIMETYPE\tSIZE\tUPLOADED BY")
		for _, att := range atts {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				att.ID, att.Filename, att.Mimetype, att.Size, att.UploadedBy)
		}
		return w.Flush()
	}),
}

var downloadCmd = &cobra.Command{
	Use:   "download <attachment-id> [output]",
	Short: "Download an attachment from the backend",
	Args:  cobra.RangeArgs(1, 2),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		file, err := a.Attachments.Download(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := file.Filename
		if len(args) == 2 {
			out = args[1]
		}
		if err := os.WriteFile(out, file.Buffer, 0o644); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(file.Buffer))
		return nil
	}),
}

var detachCmd = &cobra.Command{
	Use:   "detach <attachment-id>",
	Short: "Remove an attachment",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		if err := a.Attachments.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
		return nil
	}),
}

func init() {
	attachCmd.Flags().String("user", "", "username uploading the file")
	rootCmd.AddCommand(attachCmd, attachmentsCmd, downloadCmd, detachCmd)
}
