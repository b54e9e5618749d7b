package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jihwan-dase/dase-core/internal/config"
	"github.com/jihwan-dase/dase-core/internal/dlog"
	"github.com/jihwan-dase/dase-core/internal/kernelloader"
	"github.com/jihwan-dase/dase-core/internal/manager"
	"github.com/jihwan-dase/dase-core/internal/router"
	"github.com/spf13/cobra"
)

func runServer(cmd *cobra.Command, args []string) error {
	if describe != "" {
		return runDescribe(describe)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logLevel := dlog.Level(cfg.Logging.Level)
	if verbose {
		logLevel = dlog.LevelDebug
	}
	logger := dlog.New(dlog.Config{
		Level:  logLevel,
		Format: dlog.Format(cfg.Logging.Format),
	})

	mgr := manager.New()
	if kernelPath != "" {
		loader, err := kernelloader.Open(kernelPath)
		if err != nil {
			logger.Warn("phase4b kernel library unavailable", "path", kernelPath, "error", err.Error())
		} else {
			mgr.AttachKernel(loader)
			logger.Info("phase4b kernel library loaded", "path", kernelPath)
			defer loader.Close()
		}
	} else {
		logger.Info("no --kernel-lib given; phase4b engine type is unavailable")
	}

	if err := enableBinaryStreams(); err != nil {
		return fmt.Errorf("failed to prepare stdin/stdout: %w", err)
	}

	r := router.New(mgr)
	logger.Info("dase-cli command loop starting", "version", version)
	runLoop(r, logger, os.Stdin, os.Stdout)
	logger.Info("dase-cli command loop exiting on EOF")
	return nil
}

// runLoop reads one JSON request per line from in, dispatches it, and
// writes one JSON response line to out. It never returns an error for a
// per-line failure: every failure mode surfaces as a JSON error envelope,
// per SPEC_FULL.md §4.H. out is written to directly, one write per line,
// rather than through a buffered writer, so every response reaches the
// caller immediately.
func runLoop(r *router.Router, logger *dlog.Logger, in *os.File, out *os.File) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		resp := r.DispatchLine(line)
		encoded, err := json.Marshal(resp)
		if err != nil {
			logger.Error("failed to encode response", "error", err.Error())
			encoded = []byte(`{"status":"error","error":"internal error encoding response.","error_code":"INTERNAL_ERROR"}`)
		}
		encoded = append(encoded, '\n')
		if _, err := out.Write(encoded); err != nil {
			logger.Error("failed to write response", "error", err.Error())
			return
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Error("stdin read error", "error", err.Error())
	}
}

// runDescribe implements the one-shot --describe mode: print the static
// catalog entry for name and exit 0, or print nothing and exit 1 if name
// is not in the closed engine_type enumeration.
func runDescribe(name string) error {
	raw, ok := router.DescribeJSON(name)
	if !ok {
		return fmt.Errorf("unknown engine_type %q", name)
	}
	fmt.Fprintln(os.Stdout, string(raw))
	return nil
}
