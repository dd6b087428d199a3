// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/tliron/glsp/server"

	"toyc/internal/config"
	"toyc/internal/lsp"
)

var version = "0.1.0"

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "error loading configuration:", err)
		os.Exit(2)
	}

	// stdout carries the protocol, so logs go to stderr or the configured file
	var logFile *string
	if cfg.Log.File != "" {
		logFile = &cfg.Log.File
	}
	commonlog.Configure(cfg.Log.Verbosity+1, logFile)
	log := commonlog.GetLogger("toyc.lsp")

	handler := lsp.NewToycHandler(cfg, version)
	s := server.NewServer(handler.Handler(), lsp.Name, false)

	log.Infof("starting %s language server %s", lsp.Name, version)

	if err := s.RunStdio(); err != nil {
		log.Errorf("language server stopped: %s", err)
		os.Exit(1)
	}
}
