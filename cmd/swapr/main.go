// Package main is the entry point for the swapr aggregator CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/metaswap/swapr/business/pricing"
	"github.com/metaswap/swapr/business/swap"
	swapApp "github.com/metaswap/swapr/business/swap/app"
	swapDI "github.com/metaswap/swapr/business/swap/di"
	"github.com/metaswap/swapr/business/swap/domain"
	"github.com/metaswap/swapr/internal/apm"
	"github.com/metaswap/swapr/internal/asset"
	"github.com/metaswap/swapr/internal/config"
	"github.com/metaswap/swapr/internal/health"
	"github.com/metaswap/swapr/internal/logger"
	"github.com/metaswap/swapr/internal/metrics"
	"github.com/metaswap/swapr/internal/monolith"
	"github.com/metaswap/swapr/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// swapFlags holds the request described on the command line.
type swapFlags struct {
	fromChain   uint64
	toChain     uint64
	fromToken   string
	toToken     string
	amount      string
	payer       string
	receiver    string
	slippageBps uint
	aggregators string

	statusAggregator string
	statusTxHash     string
	statusBridge     string
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	showVersion := flag.Bool("version", false, "Show version information")

	var req swapFlags
	flag.Uint64Var(&req.fromChain, "from-chain", asset.ChainIDBSC, "Source chain id")
	flag.Uint64Var(&req.toChain, "to-chain", 0, "Destination chain id (defaults to source)")
	flag.StringVar(&req.fromToken, "from-token", "USDC", "Input token symbol or 0x-address")
	flag.StringVar(&req.toToken, "to-token", "WETH", "Output token symbol or 0x-address")
	flag.StringVar(&req.amount, "amount", "", "Input amount in token units, e.g. 1000 or 0.5")
	flag.StringVar(&req.payer, "payer", "", "Payer address (0x)")
	flag.StringVar(&req.receiver, "receiver", "", "Receiver address, defaults to payer")
	flag.UintVar(&req.slippageBps, "slippage-bps", 0, "Max slippage in basis points")
	flag.StringVar(&req.aggregators, "aggregators", "", "Comma-separated aggregator ids (defaults from config)")

	flag.StringVar(&req.statusAggregator, "status-aggregator", "", "Aggregator id for a status lookup")
	flag.StringVar(&req.statusTxHash, "status-tx", "", "Source tx hash for a status lookup")
	flag.StringVar(&req.statusBridge, "status-bridge", "", "Bridge name for a status lookup (vendor specific)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("swapr %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	tuiMode := !*cliMode && req.statusAggregator == ""

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	if err := run(ctx, *configPath, tuiMode, req); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, tuiMode bool, req swapFlags) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Swap.TUIMode = tuiMode

	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}

	var log *logger.Logger
	if tuiMode {
		// In TUI mode, suppress logs (discard output)
		log = logger.New(io.Discard, logLevel, cfg.App.Name)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name)
		log.Info(ctx, "starting swapr",
			"version", version,
			"environment", cfg.App.Environment,
		)
	}
	defer log.Sync()

	// Observability is optional; the fan-out works the same without it.
	if cfg.Telemetry.Enabled {
		traceProvider, err := apm.Setup(ctx, apm.Config{
			ServiceName: cfg.Telemetry.ServiceName,
			Exporter:    apm.Exporter(cfg.Telemetry.TraceExporter),
			Endpoint:    cfg.Telemetry.OTLPEndpoint,
			Insecure:    true,
		})
		if err != nil {
			return fmt.Errorf("tracing setup: %w", err)
		}
		defer traceProvider.Stop()

		metricProvider, err := metrics.Setup(ctx, metrics.Config{
			ServiceName: cfg.Telemetry.ServiceName,
		})
		if err != nil {
			return fmt.Errorf("metrics setup: %w", err)
		}
		defer metricProvider.Shutdown(context.Background())

		go func() {
			if err := metrics.ServePrometheus(cfg.Telemetry.PrometheusPort); err != nil {
				log.Warn(ctx, "prometheus server stopped", "error", err.Error())
			}
		}()
		log.Info(ctx, "telemetry initialized", "prometheus_port", cfg.Telemetry.PrometheusPort)

		healthServer := health.NewServer(cfg.Telemetry.HealthPort, version, log)
		if err := healthServer.Start(); err != nil {
			log.Warn(ctx, "failed to start health server", "error", err.Error())
		}
		defer healthServer.Stop(context.Background())
	}

	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	modules := []monolith.Module{
		&pricing.Module{}, // first: adapters need the price feed
		&swap.Module{},
	}
	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	svc := swapDI.GetSwapService(mono.Services())

	if req.statusAggregator != "" {
		return runStatus(ctx, svc, req)
	}

	params, err := buildParams(mono.AssetRegistry(), req)
	if err != nil {
		return err
	}

	if tuiMode {
		return runTUI(ctx, svc, params)
	}
	return runCLI(ctx, svc, params, log)
}

// buildParams turns the command-line request into SwapParams. Token
// references resolve against the built-in registry.
func buildParams(registry *asset.Registry, req swapFlags) (domain.SwapParams, error) {
	if req.amount == "" {
		return domain.SwapParams{}, fmt.Errorf("missing -amount")
	}
	if req.payer == "" || !common.IsHexAddress(req.payer) {
		return domain.SwapParams{}, fmt.Errorf("missing or invalid -payer address")
	}

	toChain := req.toChain
	if toChain == 0 {
		toChain = req.fromChain
	}

	input, ok := registry.Resolve(req.fromChain, req.fromToken)
	if !ok {
		return domain.SwapParams{}, fmt.Errorf("unknown input token %q on chain %d", req.fromToken, req.fromChain)
	}
	output, ok := registry.Resolve(toChain, req.toToken)
	if !ok {
		return domain.SwapParams{}, fmt.Errorf("unknown output token %q on chain %d", req.toToken, toChain)
	}

	units, err := decimal.NewFromString(req.amount)
	if err != nil {
		return domain.SwapParams{}, fmt.Errorf("invalid -amount %q: %w", req.amount, err)
	}
	amount, err := asset.ParseDecimal(input, units)
	if err != nil {
		return domain.SwapParams{}, err
	}

	params := domain.SwapParams{
		Input:          input,
		Output:         output,
		AmountWei:      amount.Raw(),
		Payer:          common.HexToAddress(req.payer),
		MaxSlippageBps: uint16(req.slippageBps),
	}
	if req.receiver != "" {
		if !common.IsHexAddress(req.receiver) {
			return domain.SwapParams{}, fmt.Errorf("invalid -receiver address %q", req.receiver)
		}
		params.Receiver = common.HexToAddress(req.receiver)
	}
	if req.aggregators != "" {
		for _, id := range strings.Split(req.aggregators, ",") {
			if id = strings.TrimSpace(id); id != "" {
				params.AggregatorIDs = append(params.AggregatorIDs, id)
			}
		}
	}
	return params, nil
}

func runStatus(ctx context.Context, svc *swapApp.SwapService, req swapFlags) error {
	if req.statusTxHash == "" {
		return fmt.Errorf("missing -status-tx")
	}
	status, err := svc.GetStatus(ctx, domain.StatusRef{
		AggregatorID: req.statusAggregator,
		TxHash:       req.statusTxHash,
		FromChainID:  req.fromChain,
		ToChainID:    req.toChain,
		Bridge:       req.statusBridge,
	})
	if err != nil {
		return err
	}
	fmt.Printf("status:   %s\n", status.Status)
	fmt.Printf("source:   %s\n", status.SourceTxHash)
	if status.DestinationTxHash != "" {
		fmt.Printf("dest:     %s\n", status.DestinationTxHash)
	}
	if status.Message != "" {
		fmt.Printf("message:  %s\n", status.Message)
	}
	return nil
}

func runCLI(ctx context.Context, svc *swapApp.SwapService, params domain.SwapParams, log *logger.Logger) error {
	start := time.Now()
	ranked, err := svc.GetAllTransactionRequests(ctx, params)
	if err != nil {
		return err
	}
	log.Info(ctx, "fan-out complete", "routes", len(ranked), "took", time.Since(start).String())

	fmt.Printf("%-4s %-12s %-24s %-14s %-10s %s\n",
		"#", "aggregator", "output", "rate", "cost usd", "vs best")
	for i, view := range swapApp.Performance(ranked) {
		delta := "—"
		if i > 0 {
			delta = "-" + view.DeltaToBest.StringFixed(6)
		}
		fmt.Printf("%-4d %-12s %-24s %-14s %-10s %s\n",
			i+1,
			view.AggregatorID,
			view.Output.StringFixed(6)+" "+view.OutputSymbol,
			view.ExchangeRate.StringFixed(8),
			view.TotalCostUSD.StringFixed(2),
			delta,
		)
	}

	best := ranked[0]
	fmt.Printf("\nbest route (%s):\n", best.AggregatorID)
	fmt.Printf("  to        %s\n", best.To.Hex())
	fmt.Printf("  approval  %s\n", best.ApprovalAddress.Hex())
	fmt.Printf("  chain     %d\n", best.ChainID)
	fmt.Printf("  calldata  0x%x\n", []byte(best.Data))
	return nil
}

func runTUI(ctx context.Context, svc *swapApp.SwapService, params domain.SwapParams) error {
	amount, _ := params.InputAmount()
	request := fmt.Sprintf("%s -> %s (chain %d -> %d)",
		amount.String(), params.Output.Symbol(),
		params.Input.ChainID(), params.Output.ChainID())

	fetch := func(ctx context.Context) ([]*domain.TransactionRequestWithEstimate, error) {
		return svc.GetAllTransactionRequests(ctx, params)
	}

	p := tea.NewProgram(ui.New(ctx, request, fetch), tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
