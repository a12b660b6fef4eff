// Package parquet writes assembled areas to Parquet, adapted from a
// WKB geometry writer: same schema shape (id, tags, WKB
// geometry column) and the same zstd-compressed pqarrow.FileWriter, now
// carrying an Area's area_id/relation_id pair and multipolygon geometry
// instead of an arbitrary OSM object's WKB.
package parquet

import (
	"os"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/compress"
	"github.com/apache/arrow/go/v14/parquet/pqarrow"
)

// AreaWriter writes assembled areas to Parquet: one row per area, with
// its tags as a JSON string and its geometry as EWKB (the same encoding
// internal/areastore sends to Postgres).
type AreaWriter struct {
	file      *os.File
	writer    *pqarrow.FileWriter
	builder   *array.RecordBuilder
	batchSize int
	count     int
}

// NewAreaWriter creates a new area Parquet writer at path, flushing every
// batchSize rows.
func NewAreaWriter(path string, batchSize int) (*AreaWriter, error) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "area_id", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
		{Name: "relation_id", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
		{Name: "tags", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "way", Type: arrow.BinaryTypes.Binary, Nullable: false},
	}, nil)

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	writerProps := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Zstd),
		parquet.WithDictionaryDefault(false),
	)

	writer, err := pqarrow.NewFileWriter(schema, f, writerProps, pqarrow.DefaultWriterProps())
	if err != nil {
		f.Close()
		return nil, err
	}

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)

	return &AreaWriter{
		file:      f,
		writer:    writer,
		builder:   builder,
		batchSize: batchSize,
	}, nil
}

// Write appends one area row. wkb is the EWKB MultiPolygon produced by
// internal/wkb's Encoder, tagsJSON the area's tags already marshalled to
// JSON (empty areas may pass "{}").
func (w *AreaWriter) Write(areaID, relationID int64, tagsJSON string, wkb []byte) error {
	w.builder.Field(0).(*array.Int64Builder).Append(areaID)
	w.builder.Field(1).(*array.Int64Builder).Append(relationID)
	w.builder.Field(2).(*array.StringBuilder).Append(tagsJSON)
	w.builder.Field(3).(*array.BinaryBuilder).Append(wkb)

	w.count++
	if w.count >= w.batchSize {
		return w.flush()
	}
	return nil
}

func (w *AreaWriter) flush() error {
	if w.count == 0 {
		return nil
	}
	rec := w.builder.NewRecord()
	defer rec.Release()
	err := w.writer.Write(rec)
	w.count = 0
	return err
}

// Close flushes any buffered rows and closes the underlying writer and file.
func (w *AreaWriter) Close() error {
	if err := w.flush(); err != nil {
		return err
	}
	if err := w.writer.Close(); err != nil {
		return err
	}
	return w.file.Close()
}
