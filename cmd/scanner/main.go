package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/jhoicas/Inventario-shipments/internal/application/auth"
	"github.com/jhoicas/Inventario-shipments/internal/application/fulfillment"
	"github.com/jhoicas/Inventario-shipments/internal/application/ports"
	"github.com/jhoicas/Inventario-shipments/internal/domain/shipment"
	infrapdf "github.com/jhoicas/Inventario-shipments/internal/infrastructure/pdf"
	"github.com/jhoicas/Inventario-shipments/internal/infrastructure/tryton"
	"github.com/jhoicas/Inventario-shipments/pkg/config"
	"github.com/jhoicas/Inventario-shipments/pkg/i18n"
	"github.com/jhoicas/Inventario-shipments/pkg/logger"
)

// scanner es el estado compartido por los subcomandos: sesión abierta en el ERP
// y casos de uso construidos sobre ella.
type scanner struct {
	cfg       *config.Config
	log       *logger.Logger
	tr        *i18n.Translator
	lang      language.Tag
	cred      ports.Credentials
	employee  int64
	registry  *fulfillment.Registry
	shipments *fulfillment.ShipmentUseCase
}

var (
	flagLogin    string
	flagPassword string
	flagLang     string
	flagVerbose  bool

	app *scanner
)

var rootCmd = &cobra.Command{
	Use:   "scanner",
	Short: "Terminal de escaneo de envíos internos",
	Long: `Terminal de escaneo para operarios de bodega.

Lista los envíos internos asignados al operario, concilia las cantidades
leídas con el escáner y avanza el envío hasta finalizarlo en el ERP.

La conexión se configura con las mismas variables que la API
(TRYTON_URL, TRYTON_DATABASE, SCAN_QUANTITY_MODE, ...). La contraseña
se lee de --password o de SCANNER_PASSWORD.`,
	SilenceUsage:      true,
	PersistentPreRunE: connect,
	PersistentPostRun: func(*cobra.Command, []string) {
		if app != nil {
			app.registry.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagLogin, "login", "u", os.Getenv("SCANNER_LOGIN"), "usuario del ERP")
	rootCmd.PersistentFlags().StringVarP(&flagPassword, "password", "p", "", "contraseña del ERP (o SCANNER_PASSWORD)")
	rootCmd.PersistentFlags().StringVar(&flagLang, "lang", "", "idioma de los avisos (es, en)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log de depuración")

	rootCmd.AddCommand(listCmd, scanCmd, deleteCmd, slipCmd)
}

func connect(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level := "warn"
	if flagVerbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Env: "development", Level: level, Out: cmd.ErrOrStderr()})

	mode, err := shipment.ParseQuantityMode(cfg.Scan.QuantityMode)
	if err != nil {
		return err
	}
	password := flagPassword
	if password == "" {
		password = os.Getenv("SCANNER_PASSWORD")
	}
	if flagLogin == "" || password == "" {
		return errors.New("se requieren --login y --password")
	}

	client := tryton.NewClient(tryton.Config{URL: cfg.Tryton.URL, Database: cfg.Tryton.Database, Timeout: cfg.Tryton.Timeout})
	ctx := cmd.Context()
	cred, err := client.Login(ctx, flagLogin, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	employee, err := auth.NewAuthUseCase(client, auth.JWTConfig{}).EmployeeOf(ctx, cred)
	if err != nil {
		return err
	}

	lang := cfg.App.Lang
	if flagLang != "" {
		lang = flagLang
	}
	tr := i18n.New(cfg.App.Lang)
	registry := fulfillment.NewRegistry(client, nil, log, fulfillment.RegistryConfig{
		Session: fulfillment.SessionConfig{ProductCodeThreshold: cfg.Scan.ProductCodeThreshold, QuantityMode: mode},
	})
	app = &scanner{
		cfg:       cfg,
		log:       log,
		tr:        tr,
		lang:      tr.Match(lang),
		cred:      cred,
		employee:  employee,
		registry:  registry,
		shipments: fulfillment.NewShipmentUseCase(client, nil, infrapdf.NewSlipGenerator(cfg.App.Name), registry, log),
	}
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
