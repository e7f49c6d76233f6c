package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/NeuralTrust/TextModerator/pkg/config"
	"github.com/NeuralTrust/TextModerator/pkg/dependency_container"
	domain "github.com/NeuralTrust/TextModerator/pkg/domain/moderation"
	infraLogger "github.com/NeuralTrust/TextModerator/pkg/infra/logger"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Name:  "moderatorctl",
		Usage: "diagnostics for the text moderation chain",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "directory containing config.yaml",
				Value:   "./config",
				EnvVars: []string{"CONFIG_PATH"},
			},
			&cli.StringFlag{
				Name:    "env-file",
				Usage:   "dotenv file with upstream credentials",
				Value:   ".env",
				EnvVars: []string{"ENV_FILE"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level, logs go to stderr",
				Value:   "warn",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:   "probe",
			Usage:  "probe every configured strategy and print its status",
			Action: runProbe,
		},
		{
			Name:  "analyze",
			Usage: "run the moderation chain on a text",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "text",
					Usage:    "text to analyze",
					Required: true,
				},
				&cli.Float64Flag{
					Name:  "safer",
					Usage: "sensitivity passed to the primary classifier",
					Value: domain.DefaultSafer,
				},
			},
			Action: runAnalyze,
		},
	}
	app.RunAndExitOnError()
}

func buildContainer(cctx *cli.Context) (*dependency_container.Container, func(), error) {
	_ = godotenv.Load(cctx.String("env-file"))

	if err := config.Load(cctx.String("config")); err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.GetConfig()

	logger, closeLogger, err := infraLogger.NewLogger(infraLogger.Options{
		Level:        cctx.String("log-level"),
		FileDisabled: true,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.SetOutput(os.Stderr)

	container, err := dependency_container.NewContainer(dependency_container.ContainerDI{
		Cfg:    cfg,
		Logger: logger,
	})
	if err != nil {
		closeLogger()
		return nil, nil, err
	}
	return container, func() {
		_ = container.Close()
		closeLogger()
	}, nil
}

func runProbe(cctx *cli.Context) error {
	container, closeFn, err := buildContainer(cctx)
	if err != nil {
		return err
	}
	defer closeFn()

	report := container.Prober.Force(cctx.Context)
	return printJSON(report)
}

func runAnalyze(cctx *cli.Context) error {
	container, closeFn, err := buildContainer(cctx)
	if err != nil {
		return err
	}
	defer closeFn()

	safer := cctx.Float64("safer")
	req, err := domain.NewRequest(cctx.String("text"), &safer, "moderatorctl")
	if err != nil {
		return err
	}

	result, err := container.Moderator.Classify(cctx.Context, req)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"method":     result.Method,
		"fallback":   result.Fallback,
		"chart_data": result.ChartData,
		"analysis":   result.Analysis(req.Length(), req.Safer),
	})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
