package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/wikivigil/vigil/internal/history"
	"github.com/wikivigil/vigil/internal/model"
	"github.com/wikivigil/vigil/internal/mwapi"
	"github.com/wikivigil/vigil/internal/prefs"
	"github.com/wikivigil/vigil/internal/tui"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	var configPath string
	var apiURL string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/vigil/config.yml)")
	flag.StringVar(&apiURL, "api", "", "override the wiki api.php URL")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("Vigil - Patrol Panel\n")
		fmt.Printf("  Version: %s\n", version)
		fmt.Printf("  Commit:  %s\n", commit)
		fmt.Printf("  Built:   %s\n", buildTime)
		return
	}

	cfg, err := loadCLIConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}

	if err := runTUI(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(cfg cliConfig) error {
	dir, err := configDir()
	if err != nil {
		return err
	}
	if err := tui.InitializeSkin(cfg.Skin, dir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load skin %q: %v (using default)\n", cfg.Skin, err)
	}

	settings, err := prefs.OpenFileSettings(cfg.SettingsPath)
	if err != nil {
		return fmt.Errorf("opening settings store: %w", err)
	}

	client := mwapi.NewClient(cfg.APIURL, cfg.UserAgent)
	site := cfg.siteConfig()
	store := prefs.New(site.DefaultPrefs, settings, client)

	// Site metadata and the local journal load concurrently; both
	// degrade rather than block startup.
	var nsIndex model.NamespaceIndex
	var journal *history.Store

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ns, err := client.SiteInfo(gctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: siteinfo unavailable, namespace filters disabled: %v\n", err)
			return nil
		}
		nsIndex = ns
		return nil
	})
	g.Go(func() error {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return nil
		}
		j, err := history.Open(cfg.DBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: history journal unavailable: %v\n", err)
			return nil
		}
		journal = j
		return nil
	})
	_ = g.Wait()
	if journal != nil {
		defer journal.Close()
	}

	var historyStore model.HistoryStore
	if journal != nil {
		historyStore = journal
	}

	panel := tui.NewPanelModel(store, client, client.DiffURL, historyStore, site, nsIndex)

	p := tea.NewProgram(panel, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
