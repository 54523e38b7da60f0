package parser

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/transport-catalogue/internal/common/logger"
	"github.com/transport-catalogue/pkg/transit/models"
)

// parseOrder keeps referenced entities ahead of the rows that use them.
var parseOrder = []string{
	"stops.txt",
	"routes.txt",
	"trips.txt",
	"stop_times.txt",
}

type Parser struct {
	logger logger.Logger
	// NestedFeed selects the inner archive when the zip bundles several
	// feeds, matched as a path prefix (for example "2/"). Empty picks the first.
	NestedFeed string
}

func New(logger logger.Logger) *Parser {
	return &Parser{logger: logger}
}

type ParseCallbacks struct {
	OnStop         func(stop *models.FeedStop) error
	OnRoute        func(route *models.FeedRoute) error
	OnTrip         func(trip *models.FeedTrip) error
	OnStopTime     func(stopTime *models.FeedStopTime) error
	OnFileComplete func(fileName string) error
}

func (p *Parser) ParseZip(ctx context.Context, zipPath string, callbacks ParseCallbacks) error {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("opening zip file: %w", err)
	}
	defer reader.Close()

	p.logger.Info("Parsing GTFS zip file", "path", zipPath, "files", len(reader.File))
	return p.parseArchive(ctx, &reader.Reader, callbacks)
}

// ParseBytes parses a zip held in memory.
func (p *Parser) ParseBytes(ctx context.Context, data []byte, callbacks ParseCallbacks) error {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("creating zip reader: %w", err)
	}
	return p.parseArchive(ctx, reader, callbacks)
}

func (p *Parser) parseArchive(ctx context.Context, reader *zip.Reader, callbacks ParseCallbacks) error {
	if nested := p.findNestedFeed(reader); nested != nil {
		p.logger.Info("Detected nested GTFS archive, parsing inner feed", "file", nested.Name)
		return p.parseNestedGTFS(ctx, nested, callbacks)
	}
	return p.parseStandardGTFS(ctx, reader, callbacks)
}

// findNestedFeed returns the inner archive to parse, or nil for a flat feed.
func (p *Parser) findNestedFeed(reader *zip.Reader) *zip.File {
	var first *zip.File
	for _, file := range reader.File {
		if file.Name == "stops.txt" {
			return nil
		}
		if !strings.HasSuffix(file.Name, ".zip") {
			continue
		}
		if p.NestedFeed != "" && strings.HasPrefix(file.Name, p.NestedFeed) {
			return file
		}
		if first == nil {
			first = file
		}
	}
	if p.NestedFeed != "" {
		return nil
	}
	return first
}

func (p *Parser) parseNestedGTFS(ctx context.Context, zipFile *zip.File, callbacks ParseCallbacks) error {
	rc, err := zipFile.Open()
	if err != nil {
		return fmt.Errorf("opening nested zip: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("reading nested zip: %w", err)
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("creating zip reader: %w", err)
	}

	return p.parseStandardGTFS(ctx, reader, callbacks)
}

func (p *Parser) parseStandardGTFS(ctx context.Context, reader *zip.Reader, callbacks ParseCallbacks) error {
	fileMap := make(map[string]*zip.File)
	for _, file := range reader.File {
		fileMap[file.Name] = file
	}

	for _, fileName := range parseOrder {
		file, exists := fileMap[fileName]
		if !exists {
			return fmt.Errorf("required file %s not found in archive", fileName)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := p.parseFile(file, callbacks); err != nil {
			return fmt.Errorf("parsing %s: %w", fileName, err)
		}
	}

	p.logger.Info("GTFS parsing completed successfully")
	return nil
}

func (p *Parser) parseFile(file *zip.File, callbacks ParseCallbacks) error {
	p.logger.Debug("Parsing file", "name", file.Name, "size", file.UncompressedSize64)

	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	reader.FieldsPerRecord = -1 // Variable number of fields
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}

	headerMap := make(map[string]int)
	for i, h := range header {
		// feeds exported from spreadsheets often start with a BOM
		headerMap[strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")] = i
	}

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading record: %w", err)
		}

		switch file.Name {
		case "stops.txt":
			if callbacks.OnStop != nil {
				if err := callbacks.OnStop(p.parseStop(record, headerMap)); err != nil {
					return err
				}
			}
		case "routes.txt":
			if callbacks.OnRoute != nil {
				if err := callbacks.OnRoute(p.parseRoute(record, headerMap)); err != nil {
					return err
				}
			}
		case "trips.txt":
			if callbacks.OnTrip != nil {
				if err := callbacks.OnTrip(p.parseTrip(record, headerMap)); err != nil {
					return err
				}
			}
		case "stop_times.txt":
			if callbacks.OnStopTime != nil {
				if err := callbacks.OnStopTime(p.parseStopTime(record, headerMap)); err != nil {
					return err
				}
			}
		}

		count++
		if count%10000 == 0 {
			p.logger.Debug("Progress", "file", file.Name, "records", count)
		}
	}

	p.logger.Info("File parsed", "name", file.Name, "records", count)

	if callbacks.OnFileComplete != nil {
		if err := callbacks.OnFileComplete(file.Name); err != nil {
			return fmt.Errorf("file complete callback: %w", err)
		}
	}

	return nil
}

// Helper functions to safely get values from CSV records
func (p *Parser) getString(record []string, headerMap map[string]int, field string) string {
	if idx, ok := headerMap[field]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}

func (p *Parser) getInt(record []string, headerMap map[string]int, field string, defaultVal int) int {
	str := p.getString(record, headerMap, field)
	if str == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return defaultVal
	}
	return val
}

// getFloat also reports whether the field held a usable number.
func (p *Parser) getFloat(record []string, headerMap map[string]int, field string, defaultVal float64) (float64, bool) {
	str := p.getString(record, headerMap, field)
	if str == "" {
		return defaultVal, false
	}
	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return defaultVal, false
	}
	return val, true
}

func (p *Parser) parseStop(record []string, headerMap map[string]int) *models.FeedStop {
	lat, _ := p.getFloat(record, headerMap, "stop_lat", 0)
	lon, _ := p.getFloat(record, headerMap, "stop_lon", 0)
	return &models.FeedStop{
		StopID:        p.getString(record, headerMap, "stop_id"),
		StopName:      p.getString(record, headerMap, "stop_name"),
		StopLat:       lat,
		StopLon:       lon,
		LocationType:  p.getInt(record, headerMap, "location_type", 0),
		ParentStation: p.getString(record, headerMap, "parent_station"),
	}
}

func (p *Parser) parseRoute(record []string, headerMap map[string]int) *models.FeedRoute {
	return &models.FeedRoute{
		RouteID:        p.getString(record, headerMap, "route_id"),
		RouteShortName: p.getString(record, headerMap, "route_short_name"),
		RouteLongName:  p.getString(record, headerMap, "route_long_name"),
		RouteType:      p.getInt(record, headerMap, "route_type", 0),
	}
}

func (p *Parser) parseTrip(record []string, headerMap map[string]int) *models.FeedTrip {
	return &models.FeedTrip{
		TripID:      p.getString(record, headerMap, "trip_id"),
		RouteID:     p.getString(record, headerMap, "route_id"),
		ShapeID:     p.getString(record, headerMap, "shape_id"),
		DirectionID: p.getInt(record, headerMap, "direction_id", 0),
	}
}

func (p *Parser) parseStopTime(record []string, headerMap map[string]int) *models.FeedStopTime {
	dist, ok := p.getFloat(record, headerMap, "shape_dist_traveled", 0)
	return &models.FeedStopTime{
		TripID:            p.getString(record, headerMap, "trip_id"),
		StopID:            p.getString(record, headerMap, "stop_id"),
		StopSequence:      p.getInt(record, headerMap, "stop_sequence", 0),
		ShapeDistTraveled: dist,
		HasShapeDist:      ok,
	}
}
