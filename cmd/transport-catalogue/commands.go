package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/transport-catalogue/internal/api"
	"github.com/transport-catalogue/internal/catalogue"
	"github.com/transport-catalogue/internal/common/config"
	"github.com/transport-catalogue/internal/common/db"
	"github.com/transport-catalogue/internal/common/logger"
	"github.com/transport-catalogue/internal/common/maintenance"
	"github.com/transport-catalogue/internal/gtfs-static/fetcher"
	"github.com/transport-catalogue/internal/gtfs-static/importer"
	"github.com/transport-catalogue/internal/gtfs-static/parser"
	"github.com/transport-catalogue/internal/requests"
	"github.com/transport-catalogue/pkg/transit/models"
)

type app struct {
	cfg    *config.Config
	log    logger.Logger
	stdin  io.Reader
	stdout io.Writer
}

func (a *app) run(ctx context.Context, args []string) error {
	cmd := "batch"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "batch":
		return a.batch(args)
	case "serve":
		return a.serve(ctx, args)
	case "import-gtfs":
		return a.importGTFS(ctx, args)
	case "snapshot":
		return a.snapshot(ctx, args)
	case "help":
		fmt.Fprint(a.stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) batch(args []string) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	in := fs.String("in", "", "request document (default stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, closeIn, err := a.openInput(*in)
	if err != nil {
		return err
	}
	defer closeIn()

	p := requests.NewProcessor(requests.Defaults{
		Routing: a.cfg.Settings.Routing,
		Render:  a.cfg.Settings.Render,
	}, a.log)
	return p.Process(r, a.stdout)
}

func (a *app) serve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	networkFile := fs.String("network", "", "request document whose base requests define the network")
	gtfsSource := fs.String("gtfs", "", "GTFS static zip path or URL")
	addr := fs.String("addr", a.cfg.HTTP.Addr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	h, err := a.loadHandler(ctx, *networkFile, *gtfsSource)
	if err != nil {
		return err
	}

	srv := api.NewServer(h, api.Options{
		CacheTTL:     a.cfg.HTTP.RouteCacheTTL,
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
	}, a.log)
	return srv.Run(ctx, *addr)
}

// loadHandler builds the served network from a request document, a GTFS
// feed or, when neither is given, the active snapshot. A document's own
// settings take precedence over the configured ones.
func (a *app) loadHandler(ctx context.Context, networkFile, gtfsSource string) (*requests.Handler, error) {
	settings := requests.Defaults{
		Routing: a.cfg.Settings.Routing,
		Render:  a.cfg.Settings.Render,
	}

	var n *models.Network
	switch {
	case networkFile != "":
		doc, err := a.readDocument(networkFile)
		if err != nil {
			return nil, err
		}
		settings = settings.Resolve(doc)
		n = doc.Network()
	case gtfsSource != "":
		var err error
		if n, err = a.fetchGTFS(ctx, gtfsSource, 1); err != nil {
			return nil, err
		}
	default:
		database, err := a.openDB(ctx)
		if err != nil {
			return nil, err
		}
		defer database.Close()

		var version *models.SnapshotVersion
		n, version, err = db.NewSnapshotStore(database).LoadActive(ctx)
		if err != nil {
			return nil, err
		}
		a.log.Info("Loaded network snapshot", "version_id", version.VersionID, "version_name", version.VersionName)
	}

	start := time.Now()
	h, err := requests.BuildHandler(n, settings.Routing, &settings.Render, a.log)
	if err != nil {
		return nil, err
	}
	a.log.Info("Network ready", "duration", time.Since(start).String())
	return h, nil
}

func (a *app) importGTFS(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import-gtfs", flag.ContinueOnError)
	source := fs.String("source", a.cfg.GTFSStatic.SourceURL, "GTFS static zip path or URL")
	scale := fs.Float64("distance-scale", 1, "multiplier turning shape_dist_traveled into meters")
	save := fs.Bool("save", false, "store the network as a new active snapshot instead of printing it")
	name := fs.String("name", "", "snapshot version name (default: timestamp)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *source == "" {
		return fmt.Errorf("import-gtfs: -source or GTFS_SOURCE_URL is required")
	}

	n, err := a.fetchGTFS(ctx, *source, *scale)
	if err != nil {
		return err
	}
	// reject feeds the catalogue cannot load before storing anything
	if _, err := catalogue.Load(n, a.log); err != nil {
		return fmt.Errorf("validating imported network: %w", err)
	}

	if !*save {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "    ")
		return enc.Encode(n)
	}
	return a.saveSnapshot(ctx, n, *name, *source)
}

func (a *app) snapshot(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	in := fs.String("in", "", "request document to store (default stdin)")
	name := fs.String("name", "", "snapshot version name (default: timestamp)")
	list := fs.Bool("list", false, "list stored versions")
	activate := fs.Int("activate", 0, "make the given version active")
	prune := fs.Int("prune", -1, "delete inactive versions beyond the N most recent")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *list:
		database, err := a.openDB(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		versions, err := db.NewVersionStore(database).ListVersions(ctx)
		if err != nil {
			return err
		}
		for _, v := range versions {
			active := ""
			if v.IsActive {
				active = " (active)"
			}
			fmt.Fprintf(a.stdout, "%d\t%s\t%s%s\n", v.VersionID, v.VersionName, v.CreatedAt.Format(time.RFC3339), active)
		}
		return nil
	case *activate > 0:
		database, err := a.openDB(ctx)
		if err != nil {
			return err
		}
		defer database.Close()
		return db.NewVersionStore(database).ActivateVersion(ctx, *activate)
	case *prune >= 0:
		database, err := a.openDB(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		results, err := maintenance.New(database, a.log).PruneVersions(ctx, *prune)
		for _, r := range results {
			fmt.Fprintf(a.stdout, "%d\t%s\t%s\n", r.VersionID, r.VersionName, r.CleanupStatus)
		}
		return err
	}

	doc, err := a.readDocument(*in)
	if err != nil {
		return err
	}
	cat, err := catalogue.Load(doc.Network(), a.log)
	if err != nil {
		return err
	}
	return a.saveSnapshot(ctx, cat.Export(), *name, *in)
}

func (a *app) fetchGTFS(ctx context.Context, source string, scale float64) (*models.Network, error) {
	zipPath, err := fetcher.Resolve(ctx, fetcher.NewHTTPDownloader(a.log), source, a.cfg.GTFSStatic.DownloadDir)
	if err != nil {
		return nil, err
	}
	imp := importer.NewImporter(parser.New(a.log), a.log)
	imp.DistanceScale = scale
	return imp.Import(ctx, zipPath)
}

func (a *app) saveSnapshot(ctx context.Context, n *models.Network, name, source string) error {
	if name == "" {
		name = time.Now().UTC().Format("20060102T150405Z")
	}

	database, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	versionID, err := db.NewSnapshotStore(database).Save(ctx, n, name, source)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%d\n", versionID)
	return nil
}

func (a *app) openDB(ctx context.Context) (*db.DB, error) {
	if err := a.cfg.Database.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}
	database, err := db.New(a.cfg.Database.ConnectionString(), a.log)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

func (a *app) readDocument(path string) (*requests.Document, error) {
	r, closeIn, err := a.openInput(path)
	if err != nil {
		return nil, err
	}
	defer closeIn()
	return requests.Decode(r)
}

func (a *app) openInput(path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return a.stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening input: %w", err)
	}
	return f, func() { f.Close() }, nil
}
