package geotess

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"strings"
)

// Magic byte sequences, written and read as literal ASCII with no length
// prefix and no padding, per the documented container layout.
const (
	gridMagic  = "GEOTESSGRID"
	modelMagic = "GEOTESSMODEL"
)

// formatVersion is the file format version current writers emit.
const formatVersion int32 = 3

// Class tags select the trailer decoder for a Model file. Only
// classGeoTessModel's (empty) trailer is implemented by this package; the
// others are recognised on read so a mismatched file reports a clear error
// rather than a garbled decode, but their trailer payloads (site terms,
// station metadata, PDU parameters, ...) are out of scope here.
const (
	classGeoTessModel               = "GeoTessModel"
	classGeoTessModelSiteData       = "GeoTessModelSiteData"
	classLibCorr3DModel             = "LibCorr3DModel"
	classGeoTessModelSLBM           = "GeoTessModelSLBM"
	classGeoTessModelEarthInterface = "GeoTessModelEarthInterface"
)

func writeMagic(w io.Writer, magic string) error {
	_, err := io.WriteString(w, magic)
	return err
}

func readMagic(r io.Reader, want string) error {
	buf := make([]byte, len(want))
	if _, err := io.ReadFull(r, buf); err != nil {
		return &ErrIoFailure{Reason: err.Error()}
	}
	if string(buf) != want {
		return &ErrIoFailure{Reason: fmt.Sprintf("expected magic %q, got %q", want, string(buf))}
	}
	return nil
}

func writeInt32(w io.Writer, v int32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return err
}

func readInt32(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

func writeByteField(w io.Writer, v byte) error {
	_, err := w.Write([]byte{v})
	return err
}

func readByteField(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func writeFloat32(w io.Writer, v float32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
	_, err := w.Write(buf[:])
	return err
}

func readFloat32(r io.Reader) (float32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[:])), nil
}

func writeFloat64(w io.Writer, v float64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	_, err := w.Write(buf[:])
	return err
}

func readFloat64(r io.Reader) (float64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[:])), nil
}

// writeString writes a length-prefixed (int32) UTF-8 string.
func writeString(w io.Writer, s string) error {
	if err := writeInt32(w, int32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	n, err := readInt32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// writeGridIDBytes writes a hex gridID as its 16 raw bytes.
func writeGridIDBytes(w io.Writer, gridID string) error {
	raw, err := hex.DecodeString(gridID)
	if err != nil {
		return &ErrIoFailure{Reason: "malformed gridID: " + err.Error()}
	}
	_, err = w.Write(raw)
	return err
}

func readGridIDBytes(r io.Reader) (string, error) {
	var raw [16]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return "", &ErrIoFailure{Reason: err.Error()}
	}
	return hex.EncodeToString(raw[:]), nil
}

func joinNames(names []string) string { return strings.Join(names, ";") }

func splitNames(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ";")
}

// writeGridBody writes a Grid's description and content (vertices,
// tessellations, triangles) in the order the container format specifies.
// It does not write the magic, version, or gridID fields: those are the
// caller's responsibility, since a standalone grid file (WriteGrid) and an
// embedded grid section of a Model file share this body layout but not
// those header fields.
func writeGridBody(w io.Writer, g *Grid, description string) error {
	if err := writeString(w, description); err != nil {
		return err
	}

	if err := writeInt32(w, int32(len(g.vertices))); err != nil {
		return err
	}
	for _, v := range g.vertices {
		for _, c := range v {
			if err := writeFloat64(w, c); err != nil {
				return err
			}
		}
	}

	if err := writeInt32(w, int32(len(g.tessellations))); err != nil {
		return err
	}
	for _, tess := range g.tessellations {
		if err := writeInt32(w, int32(len(tess.Levels))); err != nil {
			return err
		}
		for _, lvl := range tess.Levels {
			if err := writeInt32(w, lvl.First); err != nil {
				return err
			}
			if err := writeInt32(w, lvl.Last); err != nil {
				return err
			}
		}
	}

	if err := writeInt32(w, int32(len(g.triangles))); err != nil {
		return err
	}
	for _, t := range g.triangles {
		for _, idx := range t {
			if err := writeInt32(w, idx); err != nil {
				return err
			}
		}
	}
	return nil
}

func readGridBody(r io.Reader) (description string, vertices [][3]float64, tessellations []TessellationInfo, triangles [][3]int32, err error) {
	if description, err = readString(r); err != nil {
		return
	}

	nv, err := readInt32(r)
	if err != nil {
		return
	}
	vertices = make([][3]float64, nv)
	for i := range vertices {
		for c := 0; c < 3; c++ {
			if vertices[i][c], err = readFloat64(r); err != nil {
				return
			}
		}
	}

	ntess, err := readInt32(r)
	if err != nil {
		return
	}
	tessellations = make([]TessellationInfo, ntess)
	for i := range tessellations {
		nlevels, err2 := readInt32(r)
		if err2 != nil {
			err = err2
			return
		}
		levels := make([]Level, nlevels)
		for l := range levels {
			first, err3 := readInt32(r)
			if err3 != nil {
				err = err3
				return
			}
			last, err3 := readInt32(r)
			if err3 != nil {
				err = err3
				return
			}
			levels[l] = Level{First: first, Last: last}
		}
		tessellations[i] = TessellationInfo{Levels: levels}
	}

	nt, err := readInt32(r)
	if err != nil {
		return
	}
	triangles = make([][3]int32, nt)
	for i := range triangles {
		for c := 0; c < 3; c++ {
			if triangles[i][c], err = readInt32(r); err != nil {
				return
			}
		}
	}
	return description, vertices, tessellations, triangles, nil
}

// WriteGrid encodes g as a standalone binary Grid file: magic, version,
// gridID, description, then the vertex/tessellation/triangle body.
func WriteGrid(w io.Writer, g *Grid) error {
	bw := bufio.NewWriter(w)
	if err := writeMagic(bw, gridMagic); err != nil {
		return &ErrIoFailure{Reason: err.Error()}
	}
	if err := writeInt32(bw, formatVersion); err != nil {
		return &ErrIoFailure{Reason: err.Error()}
	}
	if err := writeGridIDBytes(bw, g.GridID()); err != nil {
		return err
	}
	if err := writeGridBody(bw, g, g.description); err != nil {
		return &ErrIoFailure{Reason: err.Error()}
	}
	return bw.Flush()
}

// ReadGrid decodes a standalone binary Grid file against shape (the
// GeodeticShape the vertices were built against; the container format
// carries no ellipsoid field of its own, consistent with this repo's
// treatment of GeodeticShape as caller-supplied configuration rather than
// process-wide state). The stored gridID is trusted as the grid's
// fingerprint rather than recomputed, since it is an authoritative identity
// the writer may have produced under a different (but compatible) hashing
// scheme.
func ReadGrid(r io.Reader, shape Shape) (*Grid, error) {
	br := bufio.NewReader(r)
	if err := readMagic(br, gridMagic); err != nil {
		return nil, err
	}
	version, err := readInt32(br)
	if err != nil {
		return nil, &ErrIoFailure{Reason: err.Error()}
	}
	if version != formatVersion {
		return nil, &ErrIoFailure{Reason: fmt.Sprintf("unsupported grid format version %d", version)}
	}
	gridID, err := readGridIDBytes(br)
	if err != nil {
		return nil, err
	}
	description, vertices, tessellations, triangles, err := readGridBody(br)
	if err != nil {
		return nil, &ErrIoFailure{Reason: err.Error()}
	}
	for _, t := range triangles {
		for _, idx := range t {
			if idx < 0 || int(idx) >= len(vertices) {
				return nil, &ErrInvalidArgument{Reason: fmt.Sprintf("triangle vertex index %d out of range", idx)}
			}
		}
	}
	for _, tess := range tessellations {
		for _, lvl := range tess.Levels {
			if lvl.First < 0 || lvl.First > lvl.Last || int(lvl.Last) >= len(triangles) {
				return nil, &ErrInvalidArgument{Reason: fmt.Sprintf("level [%d, %d] out of range", lvl.First, lvl.Last)}
			}
		}
	}

	g := newGridWithID(shape, vertices, triangles, tessellations, gridID)
	g.description = description
	return g, nil
}

// WriteModel encodes m as a binary Model file: magic, version, class tag,
// metadata, a reference-mode grid section (gridID plus the empty relative
// path — this package does not manage multi-file grid storage, so the
// caller is always expected to supply the matching Grid on read, as
// ReadModel's signature already requires), and the Profile table.
func WriteModel(w io.Writer, m *Model) error {
	bw := bufio.NewWriter(w)
	if err := writeMagic(bw, modelMagic); err != nil {
		return &ErrIoFailure{Reason: err.Error()}
	}
	if err := writeInt32(bw, formatVersion); err != nil {
		return &ErrIoFailure{Reason: err.Error()}
	}
	if err := writeString(bw, classGeoTessModel); err != nil {
		return &ErrIoFailure{Reason: err.Error()}
	}

	md := m.metadata
	if err := writeString(bw, md.Description); err != nil {
		return &ErrIoFailure{Reason: err.Error()}
	}
	if err := writeString(bw, joinNames(md.LayerNames)); err != nil {
		return &ErrIoFailure{Reason: err.Error()}
	}
	if err := writeString(bw, joinNames(md.AttributeNames)); err != nil {
		return &ErrIoFailure{Reason: err.Error()}
	}
	if err := writeString(bw, joinNames(md.AttributeUnits)); err != nil {
		return &ErrIoFailure{Reason: err.Error()}
	}
	if err := writeByteField(bw, byte(md.AttributeType)); err != nil {
		return &ErrIoFailure{Reason: err.Error()}
	}
	for _, tessIdx := range md.LayerTessellation {
		if err := writeInt32(bw, int32(tessIdx)); err != nil {
			return &ErrIoFailure{Reason: err.Error()}
		}
	}
	if err := writeString(bw, md.SoftwareVersion); err != nil {
		return &ErrIoFailure{Reason: err.Error()}
	}
	if err := writeString(bw, md.GenerationDate); err != nil {
		return &ErrIoFailure{Reason: err.Error()}
	}

	if err := writeGridIDBytes(bw, m.grid.GridID()); err != nil {
		return err
	}
	if err := writeByteField(bw, 0); err != nil { // 0 = referenced, 1 = embedded
		return &ErrIoFailure{Reason: err.Error()}
	}
	if err := writeString(bw, ""); err != nil { // relative path; unused in reference mode
		return &ErrIoFailure{Reason: err.Error()}
	}

	for _, row := range m.profiles {
		for _, p := range row {
			if err := writeProfile(bw, p); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

// ReadModel decodes a binary Model file. grid must be the Grid this model
// was built against; its gridID is compared to the file's declared gridID
// and a mismatch is a hard ErrFormatMismatch failure, distinct from the
// soft layer-name-swap warning case below. An embedded grid section (flag
// byte 1) is read and discarded rather than decoded into a second Grid,
// since this reader always trusts the caller-supplied grid — the embedded
// bytes exist only so this reader can skip past them on a file written by
// an embedding writer without corrupting the stream.
func ReadModel(r io.Reader, grid *Grid) (*Model, error) {
	br := bufio.NewReader(r)
	if err := readMagic(br, modelMagic); err != nil {
		return nil, err
	}
	version, err := readInt32(br)
	if err != nil {
		return nil, &ErrIoFailure{Reason: err.Error()}
	}
	if version != formatVersion {
		return nil, &ErrIoFailure{Reason: fmt.Sprintf("unsupported model format version %d", version)}
	}
	class, err := readString(br)
	if err != nil {
		return nil, &ErrIoFailure{Reason: err.Error()}
	}
	if class != classGeoTessModel {
		return nil, &ErrInvalidArgument{Reason: fmt.Sprintf("model class %q has no trailer decoder in this package", class)}
	}

	var md Metadata
	if md.Description, err = readString(br); err != nil {
		return nil, &ErrIoFailure{Reason: err.Error()}
	}
	layerNames, err := readString(br)
	if err != nil {
		return nil, &ErrIoFailure{Reason: err.Error()}
	}
	md.LayerNames = normalizeLayerNames(splitNames(layerNames))
	attrNames, err := readString(br)
	if err != nil {
		return nil, &ErrIoFailure{Reason: err.Error()}
	}
	md.AttributeNames = splitNames(attrNames)
	attrUnits, err := readString(br)
	if err != nil {
		return nil, &ErrIoFailure{Reason: err.Error()}
	}
	md.AttributeUnits = splitNames(attrUnits)
	attrType, err := readByteField(br)
	if err != nil {
		return nil, &ErrIoFailure{Reason: err.Error()}
	}
	md.AttributeType = AttributeType(attrType)

	md.LayerTessellation = make([]int, len(md.LayerNames))
	for i := range md.LayerTessellation {
		tessIdx, err := readInt32(br)
		if err != nil {
			return nil, &ErrIoFailure{Reason: err.Error()}
		}
		md.LayerTessellation[i] = int(tessIdx)
	}
	if md.SoftwareVersion, err = readString(br); err != nil {
		return nil, &ErrIoFailure{Reason: err.Error()}
	}
	if md.GenerationDate, err = readString(br); err != nil {
		return nil, &ErrIoFailure{Reason: err.Error()}
	}

	gridID, err := readGridIDBytes(br)
	if err != nil {
		return nil, err
	}
	embedded, err := readByteField(br)
	if err != nil {
		return nil, &ErrIoFailure{Reason: err.Error()}
	}
	if embedded == 1 {
		if _, _, _, _, err := readGridBody(br); err != nil {
			return nil, &ErrIoFailure{Reason: err.Error()}
		}
	} else {
		if _, err := readString(br); err != nil { // relative path, unused
			return nil, &ErrIoFailure{Reason: err.Error()}
		}
	}
	if gridID != grid.GridID() {
		return nil, &ErrFormatMismatch{Reason: "model's gridID does not match the supplied grid"}
	}

	nl := md.NumLayers()
	profiles := make([][]*Profile, grid.NumVertices())
	for v := range profiles {
		row := make([]*Profile, nl)
		for l := range row {
			p, err := readProfile(br, md.AttributeType, md.NumAttributes())
			if err != nil {
				return nil, err
			}
			row[l] = p
		}
		profiles[v] = row
	}

	return NewModel(grid, md, profiles)
}

// writeProfile encodes a Profile: a 1-byte variant tag, then radii as a
// float32 array, then a flat Data array.
func writeProfile(w io.Writer, p *Profile) error {
	if err := writeByteField(w, byte(p.typ)); err != nil {
		return &ErrIoFailure{Reason: err.Error()}
	}
	if err := writeInt32(w, int32(len(p.radii))); err != nil {
		return &ErrIoFailure{Reason: err.Error()}
	}
	for _, r := range p.radii {
		if err := writeFloat32(w, float32(r)); err != nil {
			return &ErrIoFailure{Reason: err.Error()}
		}
	}
	if err := writeInt32(w, int32(len(p.data))); err != nil {
		return &ErrIoFailure{Reason: err.Error()}
	}
	for _, d := range p.data {
		if _, err := w.Write(d.Bytes()); err != nil {
			return &ErrIoFailure{Reason: err.Error()}
		}
	}
	return nil
}

// readProfile decodes a Profile written by writeProfile. nattrs is the
// model-wide attribute count (Metadata.NumAttributes()); the wire format
// does not repeat it per Data tuple since every Profile in a Model shares
// the same declared AttributeType and Na.
func readProfile(r io.Reader, attrType AttributeType, nattrs int) (*Profile, error) {
	typ, err := readByteField(r)
	if err != nil {
		return nil, &ErrIoFailure{Reason: err.Error()}
	}
	nr, err := readInt32(r)
	if err != nil {
		return nil, &ErrIoFailure{Reason: err.Error()}
	}
	radii := make([]float64, nr)
	for i := range radii {
		v, err := readFloat32(r)
		if err != nil {
			return nil, &ErrIoFailure{Reason: err.Error()}
		}
		radii[i] = float64(v)
	}
	nd, err := readInt32(r)
	if err != nil {
		return nil, &ErrIoFailure{Reason: err.Error()}
	}
	width := attrType.byteWidth()
	data := make([]Data, nd)
	raw := make([]byte, nattrs*width)
	for i := range data {
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, &ErrIoFailure{Reason: err.Error()}
		}
		data[i] = DataFromBytes(attrType, nattrs, raw)
	}

	p := &Profile{typ: ProfileType(typ), attrType: attrType, nattrs: nattrs, radii: radii, data: data}
	return p, nil
}

// historicalLayerNameSwap records a known historical mismatch: two layer
// names were swapped in early production models. Only this exact
// pair is auto-corrected; every other rename is logged, never silently
// applied, so a genuinely different model doesn't get its layers reordered
// behind the caller's back.
var historicalLayerNameSwap = map[string]string{
	"middle_crust_G": "middle_crust_N",
	"middle_crust_N": "middle_crust_G",
}

func normalizeLayerNames(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	for i, n := range out {
		if swapped, ok := historicalLayerNameSwap[n]; ok {
			log.WithField("layer", i).WithField("from", n).WithField("to", swapped).
				Debug("applying historical middle_crust layer name swap")
			out[i] = swapped
		}
	}
	return out
}

// ReconcileLayerName compares an actual layer name loaded from a file
// against an expected name the caller already trusts (e.g. from a prior
// model in the same study). The two documented historical names swap
// silently; any other mismatch is logged as a warning and returned
// unchanged — callers decide whether to treat it as fatal.
func ReconcileLayerName(vertex, layer int, expected, actual string) string {
	if expected == actual {
		return actual
	}
	if swapped, ok := historicalLayerNameSwap[actual]; ok && swapped == expected {
		return expected
	}
	log.WithFields(map[string]interface{}{
		"vertex":   vertex,
		"layer":    layer,
		"expected": expected,
		"actual":   actual,
	}).Warn("layer name does not match expected name")
	return actual
}
