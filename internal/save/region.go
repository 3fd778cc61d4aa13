package save

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/flate"

	"voxcraft/internal/world"
)

// Region files hold player edits only; generated terrain is never
// written because it is reproducible from the seed. One file covers a
// 16x16x16-chunk region. Writes go through a temp file plus atomic
// rename so a torn write can never corrupt the previous valid file.
//
// Layout: magic u32, format u16, uncompressed-length u32, then a
// deflate stream of:
//
//	chunkCount u32
//	  per chunk: local chunk coord u8 x3, editCount u32
//	    per edit: packed local block pos u16 (YZX), block id u8

const (
	regionMagic   = 0x56435231 // "VCR1"
	regionVersion = 1
)

// ErrCorrupt marks a region file that failed to parse.
var ErrCorrupt = errors.New("corrupt region file")

// RegionPath returns the file path for a region under the save dir.
func RegionPath(dir string, rc world.RegionCoord) string {
	return filepath.Join(dir, fmt.Sprintf("r.%d.%d.%d.vcr", rc.X, rc.Y, rc.Z))
}

// SaveRegion writes the region's edits. The output is deterministic:
// chunks and edits are sorted before encoding.
func SaveRegion(dir string, rc world.RegionCoord, edits map[world.BlockPos]world.BlockID) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create save dir: %w", err)
	}

	type chunkEdits struct {
		lx, ly, lz int
		packed     []uint16
		ids        map[uint16]world.BlockID
	}
	byChunk := make(map[world.ChunkCoord]*chunkEdits)
	for p, id := range edits {
		cc := world.WorldToChunk(p)
		ce, ok := byChunk[cc]
		if !ok {
			lx, ly, lz := rc.Chunk(cc)
			ce = &chunkEdits{lx: lx, ly: ly, lz: lz, ids: make(map[uint16]world.BlockID)}
			byChunk[cc] = ce
		}
		bx, by, bz := world.WorldToLocal(p)
		packed := uint16(world.BlockIndex(bx, by, bz))
		ce.packed = append(ce.packed, packed)
		ce.ids[packed] = id
	}

	coords := make([]world.ChunkCoord, 0, len(byChunk))
	for cc := range byChunk {
		coords = append(coords, cc)
	}
	sort.Slice(coords, func(i, j int) bool {
		a, b := coords[i], coords[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.X < b.X
	})

	var body bytes.Buffer
	binary.Write(&body, binary.LittleEndian, uint32(len(coords)))
	for _, cc := range coords {
		ce := byChunk[cc]
		sort.Slice(ce.packed, func(i, j int) bool { return ce.packed[i] < ce.packed[j] })
		body.WriteByte(byte(ce.lx))
		body.WriteByte(byte(ce.ly))
		body.WriteByte(byte(ce.lz))
		binary.Write(&body, binary.LittleEndian, uint32(len(ce.packed)))
		for _, packed := range ce.packed {
			binary.Write(&body, binary.LittleEndian, packed)
			body.WriteByte(byte(ce.ids[packed]))
		}
	}

	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, uint32(regionMagic))
	binary.Write(&out, binary.LittleEndian, uint16(regionVersion))
	binary.Write(&out, binary.LittleEndian, uint32(body.Len()))
	fw, err := flate.NewWriter(&out, flate.BestSpeed)
	if err != nil {
		return fmt.Errorf("deflate init: %w", err)
	}
	if _, err := fw.Write(body.Bytes()); err != nil {
		return fmt.Errorf("deflate region: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("deflate region: %w", err)
	}

	path := RegionPath(dir, rc)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write region %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename region %s: %w", path, err)
	}
	return nil
}

// LoadRegion reads a region's edits. A missing file is an empty
// region, not an error.
func LoadRegion(dir string, rc world.RegionCoord) (map[world.BlockPos]world.BlockID, error) {
	raw, err := os.ReadFile(RegionPath(dir, rc))
	if err != nil {
		if os.IsNotExist(err) {
			return map[world.BlockPos]world.BlockID{}, nil
		}
		return nil, fmt.Errorf("read region: %w", err)
	}

	r := bytes.NewReader(raw)
	var magic uint32
	var version uint16
	var bodyLen uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("%w: short header", ErrCorrupt)
	}
	if magic != regionMagic {
		return nil, fmt.Errorf("%w: bad magic %#x", ErrCorrupt, magic)
	}
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("%w: short header", ErrCorrupt)
	}
	if version != regionVersion {
		return nil, fmt.Errorf("%w: unsupported format %d", ErrCorrupt, version)
	}
	if err := binary.Read(r, binary.LittleEndian, &bodyLen); err != nil {
		return nil, fmt.Errorf("%w: short header", ErrCorrupt)
	}

	fr := flate.NewReader(r)
	defer fr.Close()
	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(fr, body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	br := bytes.NewReader(body)
	var chunkCount uint32
	if err := binary.Read(br, binary.LittleEndian, &chunkCount); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	edits := make(map[world.BlockPos]world.BlockID)
	for i := uint32(0); i < chunkCount; i++ {
		var lc [3]byte
		if _, err := io.ReadFull(br, lc[:]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		var editCount uint32
		if err := binary.Read(br, binary.LittleEndian, &editCount); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		cc := world.ChunkCoord{
			X: rc.X*world.RegionSize + int(lc[0]),
			Y: rc.Y*world.RegionSize + int(lc[1]),
			Z: rc.Z*world.RegionSize + int(lc[2]),
		}
		origin := cc.Origin()
		for j := uint32(0); j < editCount; j++ {
			var packed uint16
			if err := binary.Read(br, binary.LittleEndian, &packed); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
			}
			id, err := br.ReadByte()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
			}
			idx := int(packed)
			bx := idx % world.ChunkSize
			bz := (idx / world.ChunkSize) % world.ChunkSize
			by := idx / (world.ChunkSize * world.ChunkSize)
			p := world.BlockPos{X: origin.X + bx, Y: origin.Y + by, Z: origin.Z + bz}
			edits[p] = world.BlockID(id)
		}
	}
	return edits, nil
}
