package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"kiwoom-mcp/internal/broker/kiwoom"
	"kiwoom-mcp/internal/config"
	"kiwoom-mcp/internal/logging"
	"kiwoom-mcp/internal/mcpserver"
	"kiwoom-mcp/internal/tools"
)

var (
	cfgFile string
	mock    bool
	verbose bool

	stockCode      string
	quantity       int
	price          string
	tradeType      string
	exchange       string
	conditionPrice string

	origOrderNo    string
	modifyQty      string
	modifyPrice    string
	modifyCondUnit string
)

// app 명령 실행에 필요한 구성 요소
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	broker  *kiwoom.Broker
	handler *tools.Handler
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "kiwoom-mcp",
		Short: "Kiwoom Securities trading tools over MCP",
		Long: `kiwoom-mcp exposes Kiwoom Securities REST trading operations as MCP tools.

Without a subcommand it serves MCP over stdio. The other commands run a single
operation from the shell using credentials from the config file or environment.

Examples:
  kiwoom-mcp serve --config config.yaml
  KIWOOM_APPKEY=... KIWOOM_SECRETKEY=... kiwoom-mcp token issue --mock
  kiwoom-mcp buy --code 005930 --qty 10 --type 시장가`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVar(&mock, "mock", false, "use the mock trading host")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP tools over stdio",
		RunE:  runServe,
	}

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Access token commands",
	}
	tokenCmd.AddCommand(
		&cobra.Command{
			Use:   "issue",
			Short: "Issue an access token (au10001)",
			RunE:  runTokenIssue,
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the configured token and its expiry",
			RunE:  runTokenStatus,
		},
	)

	buyCmd := &cobra.Command{
		Use:   "buy",
		Short: "Place a buy order (kt10000)",
		RunE:  runOrder(tools.StockBuyOrder),
	}
	sellCmd := &cobra.Command{
		Use:   "sell",
		Short: "Place a sell order (kt10001)",
		RunE:  runOrder(tools.StockSellOrder),
	}
	for _, cmd := range []*cobra.Command{buyCmd, sellCmd} {
		cmd.Flags().StringVar(&stockCode, "code", "", "stock code (e.g. 005930)")
		cmd.Flags().IntVar(&quantity, "qty", 0, "order quantity")
		cmd.Flags().StringVar(&price, "price", "", "order price (empty for market orders)")
		cmd.Flags().StringVar(&tradeType, "type", "시장가", "trade type name (see trade-types)")
		cmd.Flags().StringVar(&exchange, "exchange", "KRX", "exchange: KRX, KOSDAQ, SOR")
		cmd.Flags().StringVar(&conditionPrice, "cond-price", "", "condition price")
		_ = cmd.MarkFlagRequired("code")
		_ = cmd.MarkFlagRequired("qty")
	}

	modifyCmd := &cobra.Command{
		Use:   "modify",
		Short: "Modify an open order (kt10002)",
		RunE:  runModify,
	}
	modifyCmd.Flags().StringVar(&origOrderNo, "orig", "", "original order number")
	modifyCmd.Flags().StringVar(&stockCode, "code", "", "stock code")
	modifyCmd.Flags().StringVar(&modifyQty, "qty", "", "modify quantity")
	modifyCmd.Flags().StringVar(&modifyPrice, "price", "", "modify price")
	modifyCmd.Flags().StringVar(&modifyCondUnit, "cond-price", "", "modify condition price")
	modifyCmd.Flags().StringVar(&exchange, "exchange", "KRX", "exchange: KRX, KOSDAQ, SOR")
	for _, name := range []string{"orig", "code", "qty", "price"} {
		_ = modifyCmd.MarkFlagRequired(name)
	}

	tradeTypesCmd := &cobra.Command{
		Use:   "trade-types",
		Short: "List trade type names and codes",
		RunE:  runTradeTypes,
	}

	rootCmd.AddCommand(serveCmd, tokenCmd, buyCmd, sellCmd, modifyCmd, tradeTypesCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newApp 설정 로드 → 로깅 → 세션 → 브로커 → 핸들러
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("mock") {
		cfg.Kiwoom.IsMock = mock
	}
	if verbose {
		cfg.Log.Level = "DEBUG"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	session := kiwoom.NewSession(kiwoom.SessionState{
		AppKey:    cfg.Kiwoom.AppKey,
		SecretKey: cfg.Kiwoom.SecretKey,
		Mock:      cfg.Kiwoom.IsMock,
	})
	if cfg.Kiwoom.AccessToken != "" {
		session.SetToken(cfg.Kiwoom.AccessToken, cfg.Kiwoom.TokenExpiresAt, cfg.Kiwoom.IsMock)
	}

	b := kiwoom.New(session,
		kiwoom.WithHosts(cfg.Kiwoom.RealHost, cfg.Kiwoom.MockHost),
		kiwoom.WithTimeout(cfg.Kiwoom.Timeout),
		kiwoom.WithRateLimit(cfg.Kiwoom.RateLimit),
		kiwoom.WithLogger(logger),
	)

	return &app{
		cfg:     cfg,
		logger:  logger,
		broker:  b,
		handler: tools.NewHandler(b, logger),
	}, nil
}

// signalContext SIGINT/SIGTERM에서 취소되는 컨텍스트
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	a.logger.Info("starting MCP server",
		"name", a.cfg.Server.Name,
		"version", a.cfg.Server.Version,
		"mock", a.broker.IsMock(),
	)

	srv := mcpserver.New(a.handler, a.cfg.Server.Name, a.cfg.Server.Version, a.logger)
	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return fmt.Errorf("serving MCP: %w", err)
	}

	a.logger.Info("MCP server stopped")
	return nil
}

func runTokenIssue(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetDescription("Issuing token"),
		progressbar.OptionClearOnFinish(),
	)

	done := make(chan tools.Result, 1)
	go func() {
		done <- a.handler.Call(ctx, tools.GetAccessToken, nil)
	}()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	var res tools.Result
	for waiting := true; waiting; {
		select {
		case res = <-done:
			waiting = false
		case <-ticker.C:
			_ = bar.Add(1)
		}
	}
	_ = bar.Finish()

	if err := printResult(res); err != nil {
		return err
	}

	// 셸에서 다음 명령에 넘길 수 있도록 전체 토큰 출력
	if status, err := a.broker.TokenStatus(); err == nil {
		fmt.Printf("\nexport KIWOOM_ACCESS_TOKEN=%s\n", status.Token)
		if status.ExpiresAt != "" {
			fmt.Printf("export KIWOOM_TOKEN_EXPIRES_DT=%s\n", status.ExpiresAt)
		}
	}
	return nil
}

func runTokenStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	return printResult(a.handler.Call(cmd.Context(), tools.CheckTokenStatus, nil))
}

func runOrder(tool string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		return printResult(a.handler.Call(ctx, tool, map[string]any{
			"stock_code":      stockCode,
			"quantity":        quantity,
			"price":           price,
			"trade_type":      tradeType,
			"exchange":        exchange,
			"condition_price": conditionPrice,
		}))
	}
}

func runModify(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	return printResult(a.handler.Call(ctx, tools.StockModifyOrder, map[string]any{
		"exchange":               exchange,
		"original_order_number":  origOrderNo,
		"stock_code":             stockCode,
		"modify_quantity":        modifyQty,
		"modify_price":           modifyPrice,
		"modify_condition_price": modifyCondUnit,
	}))
}

func runTradeTypes(cmd *cobra.Command, args []string) error {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Name", "Code"}),
	)
	for _, tt := range kiwoom.TradeTypes() {
		table.Append([]string{tt.Name, tt.Code})
	}
	table.Render()
	return nil
}

// printResult 결과 텍스트를 출력하고 실패면 에러로 종료 코드를 남긴다
func printResult(res tools.Result) error {
	if res.IsError {
		fmt.Fprintln(os.Stderr, res.Text)
		return fmt.Errorf("operation failed")
	}
	fmt.Println(res.Text)
	return nil
}
