// Command report-cli fills in a report template from the terminal and writes the
// exported PDF to disk.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/field-report/internal/application/service"
	"github.com/garyjia/field-report/internal/config"
	"github.com/garyjia/field-report/internal/container"
	"github.com/garyjia/field-report/pkg/utils"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration file (optional)")
	output := flag.String("out", "", "where to write the PDF (default: the generated file name)")
	deliver := flag.Bool("deliver", false, "send the document through Lark when delivery is configured")
	address := flag.String("to", "", "Lark recipient for -deliver")
	flag.Parse()

	if err := run(*configPath, *output, *deliver, *address); err != nil {
		if errors.Is(err, ErrAborted) {
			fmt.Fprintln(os.Stderr, "Cancelled")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, output string, deliver bool, address string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	// a local run never needs the shared lock
	cfg.Lock.Backend = config.LockBackendMemory
	if !deliver {
		cfg.Lark.Enabled = false
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      "warn",
		OutputPath: "stderr",
		Format:     "console",
		Component:  "report-cli",
	})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := container.NewContainer(cfg.ToContainerConfig(), logger)
	if err != nil {
		return err
	}
	if err := c.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Warn("Container shutdown error", zap.Error(err))
		}
	}()

	templates, err := c.Templates().List(ctx)
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}

	var p Prompter = surveyPrompter{}
	tpl, err := chooseTemplate(p, templates)
	if err != nil {
		return err
	}
	ans, err := askAnswers(p, tpl, time.Now())
	if err != nil {
		return err
	}

	services := c.Services()
	req, err := buildRequest(ctx, services.Session, tpl.ID, ans, deliver, address)
	if err != nil {
		return err
	}

	result, err := services.Export.Export(ctx, *req, printProgress)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if output == "" {
		output = result.Artifact.Filename
	}
	if err := os.WriteFile(output, result.Artifact.Bytes, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	fmt.Printf("Wrote %s (%d pages, %d bytes)\n", output, result.Artifact.PageCount, result.Artifact.Size())
	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	switch {
	case result.Delivered():
		fmt.Println("Delivered through Lark")
	case result.DeliveryError != nil:
		fmt.Printf("Delivery failed: %v\n", result.DeliveryError)
	}
	return nil
}

// buildRequest replays the answers through a session so the CLI gets the same
// validation as the HTTP API
func buildRequest(ctx context.Context, sessions service.SessionService, templateID string, ans *Answers, deliver bool, address string) (*service.ExportRequest, error) {
	session, err := sessions.Create(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	defer sessions.End(context.WithoutCancel(ctx), session.ID)

	if _, err := sessions.UpdateForm(ctx, session.ID, service.FormUpdate{Values: ans.Values, Notes: ans.Notes}); err != nil {
		return nil, fmt.Errorf("update form: %w", err)
	}

	for _, path := range ans.PhotoPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read photo: %w", err)
		}
		upload := service.PhotoUpload{FileName: filepath.Base(path), Data: data}
		if info, err := os.Stat(path); err == nil {
			upload.CapturedAt = info.ModTime()
		}
		if _, err := sessions.AddPhoto(ctx, session.ID, upload); err != nil {
			return nil, fmt.Errorf("add photo %s: %w", path, err)
		}
	}

	return sessions.ExportRequest(ctx, session.ID, deliver, address)
}

func printProgress(done, total int) {
	fmt.Fprintf(os.Stderr, "\rRendering page %d/%d", done, total)
}
