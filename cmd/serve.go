// Copyright 2026 The fscheck Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fscheck/fscheck/internal/engine"
	"github.com/fscheck/fscheck/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a results index over HTTP for runs previously saved to --out",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	c := Config
	if c.Out == "" {
		return fmt.Errorf("serve: --out is required (it names the directory quickcheck/test write results to)")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", indexHandler(c.Out))
	mux.HandleFunc("/runs/", runHandler(c.Out))

	logger.Infof("serve: listening on http://%s (results dir %s)", c.Addr, c.Out)
	srv := &http.Server{Addr: c.Addr, Handler: mux}

	go func() {
		<-cmd.Context().Done()
		srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// indexHandler renders the minimal results index SPEC_FULL.md §C.2 calls
// for: every run's id, outcome, and minimized history length, as JSON.
func indexHandler(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		summaries, err := engine.ListSummaries(dir)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(summaries)
	}
}

// runHandler serves a single run's shrunk history.edn, at /runs/<id>/history.edn.
func runHandler(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := filepath.Base(filepath.Dir(r.URL.Path))
		path := filepath.Join(dir, runID, "history.edn")
		data, err := os.ReadFile(path)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		if _, err := w.Write(data); err != nil {
			logger.Errorf("serve: writing response for %s: %v", path, err)
		}
	}
}
