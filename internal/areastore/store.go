// Package areastore bulk-loads assembled areas into a PostGIS table, the
// Area-shaped counterpart of a raw-object mirror store: same pgx pool,
// same CREATE-UNLOGGED-then-SET-LOGGED COPY dance, same channel-backed
// pgx.CopyFromSource, but one polygon table instead of three raw-object
// mirror tables.
package areastore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/etresoft/libosmium/internal/config"
	"github.com/etresoft/libosmium/internal/logger"
	"github.com/etresoft/libosmium/internal/model"
	"github.com/etresoft/libosmium/internal/proj"
	"github.com/etresoft/libosmium/internal/wkb"
	"go.uber.org/zap"
)

// Store writes assembled model.Area records into a planet_osm_polygon-style
// table, one row per area (area_id = relation_id*2+1 encoding).
type Store struct {
	cfg  *config.Config
	pool *pgxpool.Pool
	srid int

	AreasInserted atomic.Int64
}

// New creates a Store bound to pool. srid selects the WKB SRID tag written
// with each geometry (defaults to wkb.SRID4326 when 0).
func New(cfg *config.Config, pool *pgxpool.Pool, srid int) *Store {
	if srid == 0 {
		srid = wkb.SRID4326
	}
	return &Store{cfg: cfg, pool: pool, srid: srid}
}

// EnsureTable creates the polygon table if it doesn't exist.
func (s *Store) EnsureTable(ctx context.Context, dropExisting bool) error {
	log := logger.Get()
	fullName := fmt.Sprintf("%s.planet_osm_polygon", s.cfg.DBSchema)

	if dropExisting {
		log.Info("Dropping polygon table", zap.String("table", fullName))
		if _, err := s.pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", fullName)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", fullName, err)
		}
	}

	tablespaceClause := ""
	if s.cfg.TablespaceMain != "" {
		tablespaceClause = fmt.Sprintf(" TABLESPACE %s", s.cfg.TablespaceMain)
	}

	log.Info("Creating polygon table", zap.String("table", fullName))
	schema := fmt.Sprintf(`
		CREATE UNLOGGED TABLE IF NOT EXISTS %s (
			area_id BIGINT PRIMARY KEY,
			relation_id BIGINT NOT NULL,
			tags JSONB,
			way geometry(MultiPolygon, %d) NOT NULL
		)%s`, fullName, s.srid, tablespaceClause)
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create table %s: %w", fullName, err)
	}
	return nil
}

// LoadAreas bulk inserts every valid model.Area arriving on results into
// the polygon table via COPY. Ringless areas (model.Area.Valid() == false)
// are skipped; they carry no geometry to store.
func (s *Store) LoadAreas(ctx context.Context, results <-chan model.Area) (int64, error) {
	log := logger.Get()
	log.Info("Starting polygon table load")

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	rowChan := make(chan []interface{}, 10000)
	go func() {
		defer close(rowChan)
		for a := range results {
			if !a.Valid() {
				continue
			}
			way, err := s.encodeMultiPolygon(a)
			if err != nil {
				log.Warn("Skipping area with unencodable geometry",
					zap.Int64("area_id", a.AreaID), zap.Error(err))
				continue
			}

			var tagsJSON []byte
			if len(a.Tags) > 0 {
				tagsJSON, _ = json.Marshal(a.Tags)
			}

			row := []interface{}{a.AreaID, a.RelationID(), tagsJSON, way}
			select {
			case rowChan <- row:
				s.AreasInserted.Add(1)
			case <-ctx.Done():
				return
			}
		}
	}()

	fullName := fmt.Sprintf("%s.planet_osm_polygon", s.cfg.DBSchema)
	count, err := conn.Conn().CopyFrom(
		ctx,
		pgx.Identifier{s.cfg.DBSchema, "planet_osm_polygon"},
		[]string{"area_id", "relation_id", "tags", "way"},
		&rowSource{rows: rowChan},
	)
	if err != nil {
		return 0, fmt.Errorf("COPY to %s failed: %w", fullName, err)
	}

	if _, err := conn.Exec(ctx, fmt.Sprintf("ALTER TABLE %s SET LOGGED", fullName)); err != nil {
		log.Warn("Failed to convert polygon table to logged", zap.Error(err))
	}

	log.Info("Polygon table load complete", zap.Int64("rows", count))
	return count, nil
}

// encodeMultiPolygon turns an area's ring groups into EWKB using the same
// flat-coordinate convention as internal/wkb's other Encode* methods: the
// caller provides lon/lat pairs, already unscaled from model.Location's
// fixed-point integers.
func (s *Store) encodeMultiPolygon(a model.Area) ([]byte, error) {
	return EncodeMultiPolygon(a, s.srid)
}

// EncodeMultiPolygon is the Store-independent half of encodeMultiPolygon,
// exported so other sinks (internal/parquet via cmd/assemble) can produce
// the same EWKB bytes without needing a live Store or database connection.
// model.Area always carries WGS84 degrees (the assembler's working
// projection); when srid is proj.SRID3857 every ring is reprojected to Web
// Mercator before encoding, the same boundary internal/proj's transformer
// was designed to sit at.
func EncodeMultiPolygon(a model.Area, srid int) ([]byte, error) {
	var transform func([]float64)
	if srid == proj.SRID3857 {
		t, err := proj.NewTransformer(proj.SRID4326, proj.SRID3857)
		if err != nil {
			return nil, fmt.Errorf("failed to build projection transformer: %w", err)
		}
		transform = t.TransformCoords
	}

	polys := make([][][]float64, 0, len(a.Rings))
	for _, g := range a.Rings {
		rings := make([][]float64, 0, 1+len(g.Inners))
		outer, err := ringCoords(g.Outer)
		if err != nil {
			return nil, fmt.Errorf("outer ring: %w", err)
		}
		rings = append(rings, outer)
		for i, inner := range g.Inners {
			coords, err := ringCoords(inner)
			if err != nil {
				return nil, fmt.Errorf("inner ring %d: %w", i, err)
			}
			rings = append(rings, coords)
		}
		if transform != nil {
			for _, ring := range rings {
				transform(ring)
			}
		}
		polys = append(polys, rings)
	}

	enc := wkb.NewEncoderWithSRID(256, srid)
	buf := enc.EncodeMultiPolygon(polys)
	if buf == nil {
		return nil, fmt.Errorf("area has no rings to encode")
	}
	return buf, nil
}

const coordScale = 1e7

func ringCoords(r model.Ring) ([]float64, error) {
	if len(r.Nodes) < 3 {
		return nil, fmt.Errorf("ring has only %d nodes", len(r.Nodes))
	}
	flat := make([]float64, 0, len(r.Nodes)*2)
	for _, n := range r.Nodes {
		flat = append(flat, float64(n.Location.X)/coordScale, float64(n.Location.Y)/coordScale)
	}
	return flat, nil
}

// CreateIndexes creates a spatial index on the polygon table.
func (s *Store) CreateIndexes(ctx context.Context) error {
	log := logger.Get()
	fullName := fmt.Sprintf("%s.planet_osm_polygon", s.cfg.DBSchema)

	tablespaceClause := ""
	if s.cfg.TablespaceIndex != "" {
		tablespaceClause = fmt.Sprintf(" TABLESPACE %s", s.cfg.TablespaceIndex)
	}

	log.Info("Creating polygon table spatial index")
	sql := fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS planet_osm_polygon_way_idx ON %s USING GIST (way)%s",
		fullName, tablespaceClause)
	if _, err := s.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to create spatial index: %w", err)
	}

	if _, err := s.pool.Exec(ctx, fmt.Sprintf("ANALYZE %s", fullName)); err != nil {
		return fmt.Errorf("failed to analyze %s: %w", fullName, err)
	}
	return nil
}

// DropTable drops the polygon table.
func (s *Store) DropTable(ctx context.Context) error {
	fullName := fmt.Sprintf("%s.planet_osm_polygon", s.cfg.DBSchema)
	if _, err := s.pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", fullName)); err != nil {
		return fmt.Errorf("failed to drop %s: %w", fullName, err)
	}
	return nil
}

// rowSource implements pgx.CopyFromSource for streaming rows from a channel.
type rowSource struct {
	rows    <-chan []interface{}
	current []interface{}
}

func (r *rowSource) Next() bool {
	row, ok := <-r.rows
	if !ok {
		return false
	}
	r.current = row
	return true
}

func (r *rowSource) Values() ([]interface{}, error) {
	return r.current, nil
}

func (r *rowSource) Err() error {
	return nil
}
