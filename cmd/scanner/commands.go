package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Inventario-shipments/internal/application/dto"
	"github.com/jhoicas/Inventario-shipments/pkg/i18n"
)

var (
	flagReference string
	flagLimit     int
	flagYes       bool
	flagOutput    string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Listar los envíos asignados (borrador o en espera)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		list, err := app.shipments.List(cmd.Context(), app.cred, app.employee, flagReference, dto.PageRequest{Limit: flagLimit})
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCÓDIGO\tREFERENCIA\tESTADO")
		for _, s := range list {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.ID, s.Code, s.Reference, s.State)
		}
		return w.Flush()
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan <shipment-id>",
	Short: "Escanear un envío",
	Long: `Abre el envío y lee lecturas de la entrada estándar, una por línea.

Comandos dentro de la sesión:
  :save   guardar las cantidades en el ERP
  :next   guardar y avanzar al siguiente estado
  :reset  descartar la línea que espera cantidad
  :quit   salir (pide confirmación si hay cambios sin guardar)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("id de envío inválido: %s", args[0])
		}
		sess, err := app.registry.Open(cmd.Context(), app.cred, id)
		if err != nil {
			return err
		}
		t := &terminal{
			registry: app.registry,
			sess:     sess,
			userID:   app.cred.UserID,
			tr:       app.tr,
			lang:     app.lang,
			in:       bufio.NewScanner(cmd.InOrStdin()),
			out:      cmd.OutOrStdout(),
		}
		return t.run(cmd.Context())
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <shipment-id>",
	Short: "Eliminar un envío en el ERP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("id de envío inválido: %s", args[0])
		}
		if !flagYes {
			in := bufio.NewScanner(cmd.InOrStdin())
			if !confirm(in, cmd.OutOrStdout(), app.tr.Translate(app.lang, i18n.KeyDeleteShipment)) {
				return nil
			}
		}
		return app.shipments.Delete(cmd.Context(), app.cred, id)
	},
}

var slipCmd = &cobra.Command{
	Use:   "slip <shipment-id>",
	Short: "Generar la hoja de picking en PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("id de envío inválido: %s", args[0])
		}
		pdf, s, err := app.shipments.Slip(cmd.Context(), app.cred, id)
		if err != nil {
			return err
		}
		out := flagOutput
		if out == "" {
			out = s.Code + ".pdf"
		}
		if err := os.WriteFile(out, pdf, 0o644); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&flagReference, "reference", "", "código exacto del envío")
	listCmd.Flags().IntVar(&flagLimit, "limit", 20, "máximo de envíos")
	deleteCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "no pedir confirmación")
	slipCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "archivo de salida (por defecto <código>.pdf)")
}
