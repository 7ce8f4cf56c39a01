package graph

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"os"
	"unsafe"

	"github.com/DataDog/zstd"
)

const (
	magicBytes = "OSMSPT\x00\x01"
	version    = uint32(1)
	maxNodes   = 10_000_000
	maxEdges   = 50_000_000

	flagZstd = uint32(1) << 0
)

// fileHeader is the binary header. It is always stored uncompressed.
type fileHeader struct {
	Magic    [8]byte
	Version  uint32
	Flags    uint32
	NumNodes uint32
	NumEdges uint32
}

// WriteOptions configures WriteBinary.
type WriteOptions struct {
	// Compress stores the payload as a zstd stream.
	Compress bool
}

// WriteBinary serializes g to path.
// The file is written to a temporary sibling and renamed into place.
func WriteBinary(path string, g *Graph, opts ...WriteOptions) error {
	var opt WriteOptions
	if len(opts) > 0 {
		opt = opts[0]
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // clean up on error
	}()

	if err := encode(f, g, opt); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Atomic rename.
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

// encode writes the header and payload of g to out.
func encode(out io.Writer, g *Graph, opt WriteOptions) error {
	hdr := fileHeader{
		Version:  version,
		NumNodes: g.NumNodes,
		NumEdges: g.NumEdges,
	}
	if opt.Compress {
		hdr.Flags |= flagZstd
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(out, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	var payload io.Writer = out
	var zw *zstd.Writer
	if opt.Compress {
		zw = zstd.NewWriter(out)
		payload = zw
		// Frees the encoder's C-side context on early returns.
		defer func() {
			if zw != nil {
				zw.Close()
			}
		}()
	}

	crcWriter := crc32Writer{w: payload, hash: crc32.NewIEEE()}
	w := &crcWriter

	if err := writeFloat64Slice(w, g.NodeLat); err != nil {
		return fmt.Errorf("write NodeLat: %w", err)
	}
	if err := writeFloat64Slice(w, g.NodeLon); err != nil {
		return fmt.Errorf("write NodeLon: %w", err)
	}
	if err := writeUint32Slice(w, g.FirstOut); err != nil {
		return fmt.Errorf("write FirstOut: %w", err)
	}
	if err := writeUint32Slice(w, g.Head); err != nil {
		return fmt.Errorf("write Head: %w", err)
	}
	if err := writeUint32Slice(w, g.Weight); err != nil {
		return fmt.Errorf("write Weight: %w", err)
	}

	// Geometry (length-prefixed for variable-size arrays).
	if err := writeLenPrefixedUint32(w, g.GeoFirstOut); err != nil {
		return fmt.Errorf("write GeoFirstOut: %w", err)
	}
	if err := writeLenPrefixedFloat64(w, g.GeoShapeLat); err != nil {
		return fmt.Errorf("write GeoShapeLat: %w", err)
	}
	if err := writeLenPrefixedFloat64(w, g.GeoShapeLon); err != nil {
		return fmt.Errorf("write GeoShapeLon: %w", err)
	}

	// CRC32 trailer covers the uncompressed payload.
	checksum := crcWriter.hash.Sum32()
	if err := binary.Write(payload, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}

	if zw != nil {
		err := zw.Close()
		zw = nil
		if err != nil {
			return fmt.Errorf("close zstd stream: %w", err)
		}
	}
	return nil
}

// ReadBinary deserializes a Graph written by WriteBinary.
func ReadBinary(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	// Read and validate header.
	var hdr fileHeader
	if err := binary.Read(f, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("invalid magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("unsupported version: %d", hdr.Version)
	}
	if hdr.NumNodes > maxNodes {
		return nil, fmt.Errorf("NumNodes %d exceeds limit %d", hdr.NumNodes, maxNodes)
	}
	if hdr.NumEdges > maxEdges {
		return nil, fmt.Errorf("NumEdges %d exceeds limit %d", hdr.NumEdges, maxEdges)
	}

	var payload io.Reader = f
	if hdr.Flags&flagZstd != 0 {
		zr := zstd.NewReader(f)
		defer zr.Close()
		payload = zr
	}

	crcReader := crc32Reader{r: payload, hash: crc32.NewIEEE()}
	r := &crcReader

	g := &Graph{NumNodes: hdr.NumNodes, NumEdges: hdr.NumEdges}

	if g.NodeLat, err = readFloat64Slice(r, int(hdr.NumNodes)); err != nil {
		return nil, fmt.Errorf("read NodeLat: %w", err)
	}
	if g.NodeLon, err = readFloat64Slice(r, int(hdr.NumNodes)); err != nil {
		return nil, fmt.Errorf("read NodeLon: %w", err)
	}
	if hdr.NumNodes > 0 {
		if g.FirstOut, err = readUint32Slice(r, int(hdr.NumNodes+1)); err != nil {
			return nil, fmt.Errorf("read FirstOut: %w", err)
		}
	}
	if g.Head, err = readUint32Slice(r, int(hdr.NumEdges)); err != nil {
		return nil, fmt.Errorf("read Head: %w", err)
	}
	if g.Weight, err = readUint32Slice(r, int(hdr.NumEdges)); err != nil {
		return nil, fmt.Errorf("read Weight: %w", err)
	}

	if g.GeoFirstOut, err = readLenPrefixedUint32(r); err != nil {
		return nil, fmt.Errorf("read GeoFirstOut: %w", err)
	}
	if g.GeoShapeLat, err = readLenPrefixedFloat64(r); err != nil {
		return nil, fmt.Errorf("read GeoShapeLat: %w", err)
	}
	if g.GeoShapeLon, err = readLenPrefixedFloat64(r); err != nil {
		return nil, fmt.Errorf("read GeoShapeLon: %w", err)
	}

	// Read and validate CRC32.
	expectedCRC := crcReader.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(payload, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("CRC32 mismatch: stored=%08x computed=%08x", storedCRC, expectedCRC)
	}

	if hdr.NumNodes > 0 {
		if err := validateCSR(g.FirstOut, g.Head, hdr.NumNodes); err != nil {
			return nil, fmt.Errorf("CSR invalid: %w", err)
		}
	}
	if err := validateGeometry(g); err != nil {
		return nil, fmt.Errorf("geometry invalid: %w", err)
	}

	return g, nil
}

// validateCSR checks CSR invariants.
func validateCSR(firstOut, head []uint32, numNodes uint32) error {
	if uint32(len(firstOut)) != numNodes+1 {
		return fmt.Errorf("FirstOut length %d != NumNodes+1 %d", len(firstOut), numNodes+1)
	}
	numEdges := firstOut[numNodes]
	if uint32(len(head)) != numEdges {
		return fmt.Errorf("Head length %d != FirstOut[NumNodes] %d", len(head), numEdges)
	}
	for i := uint32(1); i <= numNodes; i++ {
		if firstOut[i] < firstOut[i-1] {
			return fmt.Errorf("FirstOut not monotonic at %d: %d < %d", i, firstOut[i], firstOut[i-1])
		}
	}
	for i, h := range head {
		if h >= numNodes {
			return fmt.Errorf("Head[%d]=%d >= NumNodes=%d", i, h, numNodes)
		}
	}
	return nil
}

// validateGeometry checks that every edge's shape range lies inside the
// shape arrays, so Shape never slices out of bounds.
func validateGeometry(g *Graph) error {
	if len(g.GeoShapeLat) != len(g.GeoShapeLon) {
		return fmt.Errorf("GeoShapeLat length %d != GeoShapeLon length %d", len(g.GeoShapeLat), len(g.GeoShapeLon))
	}
	if len(g.GeoFirstOut) == 0 {
		if len(g.GeoShapeLat) > 0 {
			return fmt.Errorf("%d shape points without GeoFirstOut", len(g.GeoShapeLat))
		}
		return nil
	}
	if uint32(len(g.GeoFirstOut)) != g.NumEdges+1 {
		return fmt.Errorf("GeoFirstOut length %d != NumEdges+1 %d", len(g.GeoFirstOut), g.NumEdges+1)
	}
	if g.GeoFirstOut[0] != 0 {
		return fmt.Errorf("GeoFirstOut[0]=%d, want 0", g.GeoFirstOut[0])
	}
	for e := uint32(1); e <= g.NumEdges; e++ {
		if g.GeoFirstOut[e] < g.GeoFirstOut[e-1] {
			return fmt.Errorf("GeoFirstOut not monotonic at %d: %d < %d", e, g.GeoFirstOut[e], g.GeoFirstOut[e-1])
		}
	}
	if last := g.GeoFirstOut[g.NumEdges]; int(last) != len(g.GeoShapeLat) {
		return fmt.Errorf("GeoFirstOut[NumEdges]=%d != shape points %d", last, len(g.GeoShapeLat))
	}
	return nil
}

// Zero-copy I/O helpers using unsafe.Slice.

func writeUint32Slice(w io.Writer, s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func writeFloat64Slice(w io.Writer, s []float64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

func readUint32Slice(r io.Reader, n int) ([]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]uint32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readFloat64Slice(r io.Reader, n int) ([]float64, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]float64, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func writeLenPrefixedUint32(w io.Writer, s []uint32) error {
	n := uint32(len(s))
	if err := binary.Write(w, binary.LittleEndian, n); err != nil {
		return err
	}
	return writeUint32Slice(w, s)
}

func writeLenPrefixedFloat64(w io.Writer, s []float64) error {
	n := uint32(len(s))
	if err := binary.Write(w, binary.LittleEndian, n); err != nil {
		return err
	}
	return writeFloat64Slice(w, s)
}

func readLenPrefixedUint32(r io.Reader) ([]uint32, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if n > math.MaxUint32/4 {
		return nil, fmt.Errorf("length %d too large", n)
	}
	return readUint32Slice(r, int(n))
}

func readLenPrefixedFloat64(r io.Reader) ([]float64, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if n > math.MaxUint32/8 {
		return nil, fmt.Errorf("length %d too large", n)
	}
	return readFloat64Slice(r, int(n))
}

// CRC32 wrapping writers/readers.

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
