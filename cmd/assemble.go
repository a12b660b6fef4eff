package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/etresoft/libosmium/internal/area"
	"github.com/etresoft/libosmium/internal/areapool"
	"github.com/etresoft/libosmium/internal/areastore"
	"github.com/etresoft/libosmium/internal/expire"
	"github.com/etresoft/libosmium/internal/logger"
	"github.com/etresoft/libosmium/internal/metrics"
	"github.com/etresoft/libosmium/internal/model"
	"github.com/etresoft/libosmium/internal/parquet"
	"github.com/etresoft/libosmium/internal/pbf"
	luapolicy "github.com/etresoft/libosmium/internal/policy"
	"github.com/etresoft/libosmium/internal/relations"
	"github.com/etresoft/libosmium/internal/style"
)

var (
	assembleDebugRings bool
	assembleParquetOut string
	assembleSRID       int
	assembleSkipDB     bool
	assembleDropTable  bool
)

// expireAreaTiles marks every ring's bounding box as expired, so a
// rendering pipeline downstream of planet_osm_polygon knows which tiles
// to regenerate after this run touched a.
func expireAreaTiles(tracker *expire.Tracker, a model.Area) {
	for _, g := range a.Rings {
		expireRingTiles(tracker, g.Outer)
		for _, inner := range g.Inners {
			expireRingTiles(tracker, inner)
		}
	}
}

const assembleCoordScale = 1e7

func expireRingTiles(tracker *expire.Tracker, r model.Ring) {
	coords := make([]float64, 0, len(r.Nodes)*2)
	for _, n := range r.Nodes {
		coords = append(coords, float64(n.Location.X)/assembleCoordScale, float64(n.Location.Y)/assembleCoordScale)
	}
	tracker.ExpireCoords(coords)
}

var assembleCmd = &cobra.Command{
	Use:   "assemble <input.osm.pbf>",
	Short: "Assemble multipolygon relations into areas",
	Long: `Stream an OSM PBF file through the two-pass relations manager and
reconstruct a valid outer/inner-ring polygon for every relation a style or
Lua policy selects.

Pass 1 registers the relations of interest and the members they
reference. Pass 2 resolves those members against a memory-mapped node
coordinate index and completes each relation the moment every member has
been observed, handing its resolved way members to the polygon
assembler.

Completed areas are loaded into the planet_osm_polygon table and,
optionally, written to a Parquet file.`,
	Args: cobra.ExactArgs(1),
	Run:  runAssemble,
}

func init() {
	rootCmd.AddCommand(assembleCmd)

	assembleCmd.Flags().StringVar(&cfg.StyleFile, "style", cfg.StyleFile, "Path to a style YAML file or a .lua policy script")
	assembleCmd.Flags().BoolVar(&assembleDebugRings, "debug-rings", false, "Log ring-assembly diagnostics")
	assembleCmd.Flags().StringVar(&assembleParquetOut, "parquet-out", "", "Also write assembled areas to this Parquet file")
	assembleCmd.Flags().IntVar(&assembleSRID, "srid", 0, "SRID for stored geometry (defaults to the configured projection, 4326)")
	assembleCmd.Flags().BoolVar(&assembleSkipDB, "skip-db", false, "Skip the PostgreSQL load, only produce Parquet")
	assembleCmd.Flags().BoolVar(&assembleDropTable, "drop-existing", false, "Drop the polygon table before loading")
	assembleCmd.Flags().StringVar(&cfg.ExpireOutput, "expire-output", cfg.ExpireOutput, "Write expired tile list (z/x/y per line) to this file")
	assembleCmd.Flags().IntVar(&cfg.ExpireMinZoom, "expire-min-zoom", cfg.ExpireMinZoom, "Minimum zoom level for tile expiry")
	assembleCmd.Flags().IntVar(&cfg.ExpireMaxZoom, "expire-max-zoom", cfg.ExpireMaxZoom, "Maximum zoom level for tile expiry")
}

// loadAssemblePolicy picks a Lua-scripted or YAML tag-match policy based
// on the file extension, the same dispatch an assemble run and an OSC
// update both need before building a relations.Manager.
func loadAssemblePolicy(path string) (relations.Policy, func(), error) {
	if strings.HasSuffix(strings.ToLower(path), ".lua") {
		p := luapolicy.NewLua()
		if err := p.LoadFile(path); err != nil {
			p.Close()
			return nil, nil, err
		}
		return p, p.Close, nil
	}

	var scfg *style.Config
	if path != "" {
		loaded, err := style.LoadConfig(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load style %s: %w", path, err)
		}
		scfg = loaded
	}
	return style.NewPolicy(scfg), nil, nil
}

// resolveWayMembers gathers the resolved model.Way for every way member of
// a just-completed relation. It must run from the Manager.OnComplete hook,
// before handleComplete releases the relation's member-tracking entries.
func resolveWayMembers(m *relations.Manager, h relations.RelationHandle, rel model.Relation) []model.Way {
	ways := make([]model.Way, 0, len(rel.Members))
	for pos, mem := range rel.Members {
		if mem.Kind != model.KindWay || mem.Ref == 0 {
			continue
		}
		mh := h.MemberHandle(pos)
		if !mh.Valid() {
			continue
		}
		ways = append(ways, *m.ResolveWay(mh))
	}
	return ways
}

func writeParquetArea(w *parquet.AreaWriter, a model.Area, enc func(model.Area) ([]byte, error)) {
	log := logger.Get()
	wkbBytes, err := enc(a)
	if err != nil {
		log.Warn("skipping area in parquet output", zap.Int64("area_id", a.AreaID), zap.Error(err))
		return
	}
	tagsJSON := "{}"
	if len(a.Tags) > 0 {
		if b, err := json.Marshal(a.Tags); err == nil {
			tagsJSON = string(b)
		}
	}
	if err := w.Write(a.AreaID, a.RelationID(), tagsJSON, wkbBytes); err != nil {
		log.Warn("failed to write area to parquet", zap.Int64("area_id", a.AreaID), zap.Error(err))
	}
}

func runAssemble(cmd *cobra.Command, args []string) {
	cfg.InputFile = args[0]
	log := logger.Get()

	if err := cfg.Validate(); err != nil {
		exitWithError("invalid configuration", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.MetricsInterval > 0 {
		metricsCtx, cancelMetrics := context.WithCancel(ctx)
		defer cancelMetrics()
		collector := metrics.NewCollector(cfg.MetricsInterval, log)
		go collector.Start(metricsCtx)
		log.Info("System metrics collection started", zap.Duration("interval", cfg.MetricsInterval))
	}

	var tiles *expire.Tracker
	if cfg.ExpireOutput != "" {
		tiles = expire.NewTracker(cfg.ExpireMinZoom, cfg.ExpireMaxZoom)
	}

	pol, closePolicy, err := loadAssemblePolicy(cfg.StyleFile)
	if err != nil {
		exitWithError("failed to load policy", err)
	}
	if closePolicy != nil {
		defer closePolicy()
	}

	var jobs []areapool.Job
	mgr := relations.NewManager(pol, nil)
	mgr.OnComplete = func(m *relations.Manager, h relations.RelationHandle) {
		rel := *h.Relation()
		jobs = append(jobs, areapool.Job{Relation: rel, Ways: resolveWayMembers(m, h, rel)})
	}

	src, err := pbf.NewSource(cfg, mgr)
	if err != nil {
		exitWithError("failed to create PBF source", err)
	}
	defer src.Close()

	log.Info("Starting area assembly",
		zap.String("input", cfg.InputFile),
		zap.String("style", cfg.StyleFile))
	start := time.Now()

	stats, err := src.Run(ctx)
	if err != nil {
		exitWithError("scan failed", err)
	}
	log.Info("Scan complete",
		zap.Int64("nodes", stats.Nodes),
		zap.Int64("ways", stats.Ways),
		zap.Int64("relations", stats.Relations),
		zap.Int("relations_of_interest", len(jobs)))

	srid := assembleSRID
	if srid == 0 {
		srid = cfg.Projection
	}

	var pqw *parquet.AreaWriter
	if assembleParquetOut != "" {
		pqw, err = parquet.NewAreaWriter(assembleParquetOut, cfg.BatchSize)
		if err != nil {
			exitWithError("failed to create parquet writer", err)
		}
	}

	var store *areastore.Store
	if !assembleSkipDB {
		dbPool, err := pgxpool.New(ctx, cfg.ConnectionString())
		if err != nil {
			exitWithError("failed to connect to database", err)
		}
		defer dbPool.Close()

		store = areastore.New(cfg, dbPool, srid)
		if err := store.EnsureTable(ctx, assembleDropTable); err != nil {
			exitWithError("failed to ensure polygon table", err)
		}
	}

	areaChan := make(chan model.Area, 1000)
	loadDone := make(chan struct{})
	var loaded int64
	go func() {
		defer close(loadDone)
		if store == nil {
			for range areaChan {
			}
			return
		}
		n, err := store.LoadAreas(ctx, areaChan)
		if err != nil {
			log.Error("polygon load failed", zap.Error(err))
			return
		}
		loaded = n
	}()

	encodeForParquet := func(a model.Area) ([]byte, error) {
		return areastore.EncodeMultiPolygon(a, srid)
	}

	var assembled, ringless int64
	asmCfg := area.Config{DebugOutput: assembleDebugRings}
	pool := areapool.New(asmCfg, cfg.Workers)
	runErr := pool.Run(ctx, jobs, func(res area.Result) {
		assembled++
		if !res.Area.Valid() {
			ringless++
		}
		if pqw != nil {
			writeParquetArea(pqw, res.Area, encodeForParquet)
		}
		if tiles != nil && res.Area.Valid() {
			expireAreaTiles(tiles, res.Area)
		}
		areaChan <- res.Area
	})
	close(areaChan)
	<-loadDone

	if pqw != nil {
		if err := pqw.Close(); err != nil {
			log.Warn("failed to close parquet writer", zap.Error(err))
		}
	}
	if runErr != nil {
		exitWithError("assembly failed", runErr)
	}

	if store != nil {
		if err := store.CreateIndexes(ctx); err != nil {
			log.Warn("failed to create spatial index", zap.Error(err))
		}
	}

	if tiles != nil {
		if err := tiles.WriteToFile(cfg.ExpireOutput); err != nil {
			log.Warn("failed to write expire tiles", zap.Error(err))
		}
	}

	log.Info("Area assembly complete",
		zap.Duration("duration", time.Since(start).Round(time.Second)),
		zap.Int64("assembled", assembled),
		zap.Int64("ringless", ringless),
		zap.Int64("loaded", loaded))
}
