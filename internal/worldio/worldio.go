// Package worldio implements the byte-stable per-submap text format of
// spec §6: a human-readable save file that must round-trip byte-identically
// for an unchanged submap, so legacy saves stay readable across a
// language rewrite.
package worldio

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ashgo/ashfall/internal/catalog"
	"github.com/ashgo/ashfall/internal/worldmap"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
)

// terrainCharOffset matches spec §6: "char = id+42".
const terrainCharOffset = 42

// FileStore is the disk-backed worldmap.Store implementation: one file
// per submap under root, named by absolute coordinate (spec §6
// Persisted state layout).
type FileStore struct {
	root string
	gen  worldmap.Generator
	cat  catalog.Provider
	log  *zap.Logger
	// transcoder is a seam for round-tripping non-UTF8 submap text.
	// NewFileStore leaves it nil and Load/Save do not consult it: submap
	// bytes are read and written as-is.
	transcoder encoding.Encoding
}

// NewFileStore constructs a FileStore rooted at dir/save (spec §6: "Root:
// <world>/save/").
func NewFileStore(dir string, gen worldmap.Generator, cat catalog.Provider, log *zap.Logger) *FileStore {
	return &FileStore{
		root: filepath.Join(dir, "save"),
		gen:  gen,
		cat:  cat,
		log:  log,
	}
}

func (fs *FileStore) path(coord worldmap.SubmapCoord) string {
	return filepath.Join(fs.root, fmt.Sprintf("m.%d.%d.%d", coord.X, coord.Y, coord.Z))
}

// Load implements worldmap.Store: reads the file at coord, generating a
// fresh submap via fs.gen if it doesn't exist.
func (fs *FileStore) Load(coord worldmap.SubmapCoord) (*worldmap.Submap, bool, error) {
	data, err := os.ReadFile(fs.path(coord))
	if os.IsNotExist(err) {
		sub := worldmap.NewSubmap(coord)
		if fs.gen != nil {
			fs.gen.Generate(sub)
		}
		return sub, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("worldio: read %s: %w", fs.path(coord), err)
	}
	sub, err := Decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("worldio: decode %s: %w", fs.path(coord), err)
	}
	sub.Coord = coord
	return sub, true, nil
}

// Save implements worldmap.Store: writes the submap's file, creating the
// save directory if needed.
func (fs *FileStore) Save(s *worldmap.Submap) error {
	if err := os.MkdirAll(fs.root, 0o755); err != nil {
		return fmt.Errorf("worldio: mkdir %s: %w", fs.root, err)
	}
	data := Encode(s)
	if err := os.WriteFile(fs.path(s.Coord), data, 0o644); err != nil {
		return fmt.Errorf("worldio: write %s: %w", fs.path(s.Coord), err)
	}
	return nil
}

// SaveAll saves every submap in subs, joining every failing write with
// multierr so one bad disk write doesn't mask another (spec §2 Domain
// Stack, mirroring the teacher's batched WAL-flush error handling).
func (fs *FileStore) SaveAll(subs []*worldmap.Submap) error {
	var errs error
	for _, s := range subs {
		if s == nil {
			continue
		}
		if err := fs.Save(s); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Encode serializes a submap to the byte-stable text format of spec §6.
func Encode(s *worldmap.Submap) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d\n", s.LastVisited)

	for ly := 0; ly < worldmap.SubmapSize; ly++ {
		for lx := 0; lx < worldmap.SubmapSize; lx++ {
			t := s.TileAt(lx, ly)
			buf.WriteByte(byte(int32(t.Terrain) + terrainCharOffset))
		}
		buf.WriteByte('\n')
	}

	radiation := make([]string, 0, worldmap.TilesPerSubmap)
	for i := 0; i < worldmap.TilesPerSubmap; i++ {
		lx, ly := i%worldmap.SubmapSize, i/worldmap.SubmapSize
		radiation = append(radiation, strconv.Itoa(int(s.TileAt(lx, ly).Radiation)))
	}
	buf.WriteString(strings.Join(radiation, " "))
	buf.WriteByte('\n')

	for ly := 0; ly < worldmap.SubmapSize; ly++ {
		for lx := 0; lx < worldmap.SubmapSize; lx++ {
			t := s.TileAt(lx, ly)
			for _, it := range t.Items.Items {
				fmt.Fprintf(&buf, "I %d %d\n", lx, ly)
				encodeItemLine(&buf, it)
				for _, c := range it.Contents {
					buf.WriteString("C \n")
					encodeItemLine(&buf, c)
				}
			}
			if t.Trap != 0 {
				fmt.Fprintf(&buf, "T %d %d %d\n", lx, ly, t.Trap)
			}
			if !t.Field.IsNone() {
				fmt.Fprintf(&buf, "F %d %d %d %d %d\n", lx, ly, t.Field.Kind, t.Field.Intensity, t.Field.Age)
			}
		}
	}
	for _, sp := range s.PendingSpawns {
		fmt.Fprintf(&buf, "S %d %d %d %d\n", sp.MonsterID, sp.Count, sp.LocalX, sp.LocalY)
	}
	return buf.Bytes()
}

func encodeItemLine(buf *bytes.Buffer, it worldmap.Item) {
	fmt.Fprintf(buf, "%d %d %d\n", it.ID, it.Count, it.Damage)
}

// Decode parses the byte-stable text format back into a Submap. Returns
// a ParseError-flavored error (wrapped by the caller) on malformed input
// (spec §7 ParseError).
func Decode(data []byte) (*worldmap.Submap, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	sub := &worldmap.Submap{}

	if !sc.Scan() {
		return nil, fmt.Errorf("worldio: empty submap file")
	}
	turn, err := strconv.ParseInt(strings.TrimSpace(sc.Text()), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("worldio: bad turn line: %w", err)
	}
	sub.LastVisited = turn

	for ly := 0; ly < worldmap.SubmapSize; ly++ {
		if !sc.Scan() {
			return nil, fmt.Errorf("worldio: truncated terrain grid at row %d", ly)
		}
		line := sc.Text()
		if len(line) < worldmap.SubmapSize {
			return nil, fmt.Errorf("worldio: short terrain row %d: %q", ly, line)
		}
		for lx := 0; lx < worldmap.SubmapSize; lx++ {
			sub.TileAt(lx, ly).Terrain = catalog.TerrainID(int32(line[lx]) - terrainCharOffset)
		}
	}

	if !sc.Scan() {
		return nil, fmt.Errorf("worldio: missing radiation row")
	}
	fields := strings.Fields(sc.Text())
	if len(fields) != worldmap.TilesPerSubmap {
		return nil, fmt.Errorf("worldio: radiation row has %d values, want %d", len(fields), worldmap.TilesPerSubmap)
	}
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("worldio: bad radiation value %q: %w", f, err)
		}
		lx, ly := i%worldmap.SubmapSize, i/worldmap.SubmapSize
		sub.TileAt(lx, ly).Radiation = uint8(v)
	}

	var pendingItem *worldmap.Item
	var pendingTile *worldmap.Tile
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		switch line[0] {
		case 'I':
			var lx, ly int
			if _, err := fmt.Sscanf(line, "I %d %d", &lx, &ly); err != nil {
				return nil, fmt.Errorf("worldio: bad item record %q: %w", line, err)
			}
			pendingTile = sub.TileAt(lx, ly)
			if !sc.Scan() {
				return nil, fmt.Errorf("worldio: missing item-save-line after %q", line)
			}
			it, err := decodeItemLine(sc.Text())
			if err != nil {
				return nil, err
			}
			pendingTile.Items.Items = append(pendingTile.Items.Items, it)
			pendingItem = &pendingTile.Items.Items[len(pendingTile.Items.Items)-1]
		case 'C':
			if pendingItem == nil {
				return nil, fmt.Errorf("worldio: content record with no parent item")
			}
			if !sc.Scan() {
				return nil, fmt.Errorf("worldio: missing content item-save-line")
			}
			it, err := decodeItemLine(sc.Text())
			if err != nil {
				return nil, err
			}
			pendingItem.Contents = append(pendingItem.Contents, it)
		case 'T':
			var lx, ly, id int
			if _, err := fmt.Sscanf(line, "T %d %d %d", &lx, &ly, &id); err != nil {
				return nil, fmt.Errorf("worldio: bad trap record %q: %w", line, err)
			}
			sub.TileAt(lx, ly).Trap = catalog.TrapID(id)
		case 'F':
			var lx, ly, kind, intensity, age int
			if _, err := fmt.Sscanf(line, "F %d %d %d %d %d", &lx, &ly, &kind, &intensity, &age); err != nil {
				return nil, fmt.Errorf("worldio: bad field record %q: %w", line, err)
			}
			sub.TileAt(lx, ly).Field = worldmap.FieldCell{
				Kind:      worldmap.FieldKind(kind),
				Intensity: uint8(intensity),
				Age:       int32(age),
			}
		case 'S':
			var monType, count, lx, ly int
			if _, err := fmt.Sscanf(line, "S %d %d %d %d", &monType, &count, &lx, &ly); err != nil {
				return nil, fmt.Errorf("worldio: bad spawn record %q: %w", line, err)
			}
			sub.PendingSpawns = append(sub.PendingSpawns, worldmap.SpawnPoint{
				MonsterID: catalog.MonsterID(monType), Count: count, LocalX: lx, LocalY: ly,
			})
		default:
			return nil, fmt.Errorf("worldio: unrecognized record %q", line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("worldio: scan: %w", err)
	}
	return sub, nil
}

func decodeItemLine(line string) (worldmap.Item, error) {
	var id, count, damage int
	if _, err := fmt.Sscanf(line, "%d %d %d", &id, &count, &damage); err != nil {
		return worldmap.Item{}, fmt.Errorf("worldio: bad item-save-line %q: %w", line, err)
	}
	return worldmap.Item{ID: catalog.ItemID(id), Count: int32(count), Damage: int32(damage)}, nil
}
