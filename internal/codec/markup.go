package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/richpad/internal/document"
	"github.com/dshills/richpad/internal/style"
)

// Markup identification written at the top of every markup document.
const (
	MarkupFormat  = "richpad"
	MarkupVersion = 1
)

// SaveMarkup writes doc as indented markup. Run style fields equal to the
// document default are omitted and inherited again on load.
func SaveMarkup(w io.Writer, doc *document.Document) error {
	data, err := MarshalMarkup(doc)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return &IOError{Op: "write markup", Err: err}
	}
	return nil
}

// MarshalMarkup encodes doc as indented markup. A document holding an
// attribute that markup cannot represent, such as a NaN font size, is
// rejected with style.ErrInvalidValue.
func MarshalMarkup(doc *document.Document) ([]byte, error) {
	if err := validate(doc); err != nil {
		return nil, err
	}
	b := &builder{json: "{}"}
	b.set("format", MarkupFormat)
	b.set("version", MarkupVersion)
	if doc.ID != "" {
		b.set("id", doc.ID)
	}
	b.setRaw("default", encodeChar(doc.Default, nil))
	b.setRaw("blocks", "[]")
	for _, blk := range doc.Blocks {
		b.setRaw("blocks.-1", encodeBlock(blk, doc.Default))
	}
	if b.err != nil {
		return nil, b.err
	}
	return pretty.PrettyOptions([]byte(b.json), &pretty.Options{
		Width:  80,
		Indent: "  ",
	}), nil
}

func validate(doc *document.Document) error {
	if err := doc.Default.Validate(); err != nil {
		return fmt.Errorf("document style: %w", err)
	}
	for i, blk := range doc.Blocks {
		if err := blk.Para.Validate(); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		for j, r := range blk.Runs {
			if err := r.Style.Validate(); err != nil {
				return fmt.Errorf("block %d run %d: %w", i, j, err)
			}
		}
	}
	return nil
}

// builder accumulates sjson edits and keeps the first error.
type builder struct {
	json string
	err  error
}

func (b *builder) set(path string, v any) {
	if b.err == nil {
		b.json, b.err = sjson.Set(b.json, path, v)
	}
}

func (b *builder) setRaw(path, raw string) {
	if b.err == nil {
		b.json, b.err = sjson.SetRaw(b.json, path, raw)
	}
}

// encodeChar encodes c, leaving out fields equal to base when base is set.
func encodeChar(c style.Char, base *style.Char) string {
	b := &builder{json: "{}"}
	if base == nil || c.Family != base.Family {
		b.set("family", c.Family)
	}
	if base == nil || c.Size != base.Size {
		b.set("size", c.Size)
	}
	if base == nil || c.Weight != base.Weight {
		b.set("bold", c.Bold())
	}
	if base == nil || c.Slant != base.Slant {
		b.set("italic", c.Italic())
	}
	if base == nil || c.Underline != base.Underline {
		b.set("underline", c.Underline)
	}
	if base == nil || c.Color != base.Color {
		b.set("color", c.Color.Hex())
	}
	return b.json
}

func encodeBlock(blk *document.Block, def style.Char) string {
	b := &builder{json: "{}"}
	b.set("align", blk.Para.Align.String())
	b.set("indent", blk.Para.Indent)
	b.set("lineHeight.value", blk.Para.LineHeight.Value)
	b.set("lineHeight.absolute", blk.Para.LineHeight.Absolute)
	b.set("list", blk.Para.List.String())
	b.setRaw("runs", "[]")
	for _, r := range blk.Runs {
		rb := &builder{json: "{}"}
		rb.set("text", string(r.Text))
		if st := encodeChar(r.Style, &def); st != "{}" {
			rb.setRaw("style", st)
		}
		b.setRaw("runs.-1", rb.json)
	}
	return b.json
}

// LoadMarkup reads a markup document.
func LoadMarkup(r io.Reader) (*document.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &IOError{Op: "read markup", Err: err}
	}
	return UnmarshalMarkup(data)
}

// UnmarshalMarkup decodes markup bytes. Missing style fields of a run take
// the document default; missing paragraph fields take style.DefaultPara.
func UnmarshalMarkup(data []byte) (*document.Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, syntaxError(data)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, parseErr(0, "top level value is not an object")
	}

	if f := root.Get("format"); f.String() != MarkupFormat {
		return nil, parseErr(f.Index, "format is %q, want %q", f.String(), MarkupFormat)
	}
	v := root.Get("version")
	if v.Type != gjson.Number || v.Int() < 1 || v.Int() > MarkupVersion {
		return nil, parseErr(v.Index, "unsupported version %s", v.Raw)
	}

	def := style.DefaultChar()
	if d := root.Get("default"); d.Exists() {
		var err error
		if def, err = decodeChar(d, def); err != nil {
			return nil, err
		}
	}

	blocksRes := root.Get("blocks")
	if !blocksRes.IsArray() {
		return nil, parseErr(blocksRes.Index, "blocks must be an array")
	}
	n := int(blocksRes.Get("#").Int())
	blocks := make([]*document.Block, 0, n)
	for i := 0; i < n; i++ {
		blk, err := decodeBlock(blocksRes.Get(strconv.Itoa(i)), def)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, blk)
	}

	doc := document.FromBlocks(def, blocks...)
	if id := root.Get("id"); id.Exists() {
		if id.Type != gjson.String || uuid.Validate(id.String()) != nil {
			return nil, parseErr(id.Index, "invalid document id %s", id.Raw)
		}
		doc.ID = id.String()
	}
	return doc, nil
}

func decodeBlock(res gjson.Result, def style.Char) (*document.Block, error) {
	if !res.IsObject() {
		return nil, parseErr(res.Index, "block must be an object")
	}
	para := style.DefaultPara()

	if a := res.Get("align"); a.Exists() {
		align, err := style.ParseAlign(a.String())
		if err != nil || a.Type != gjson.String {
			return nil, parseErr(a.Index, "invalid alignment %s", a.Raw)
		}
		para.Align = align
	}
	if in := res.Get("indent"); in.Exists() {
		if in.Type != gjson.Number || !style.Finite(in.Float()) || in.Float() < 0 {
			return nil, parseErr(in.Index, "invalid indent %s", in.Raw)
		}
		para.Indent = in.Float()
	}
	if lh := res.Get("lineHeight"); lh.Exists() {
		val := lh.Get("value")
		if val.Type != gjson.Number || !style.Positive(val.Float()) {
			return nil, parseErr(lh.Index, "invalid line height %s", lh.Raw)
		}
		para.LineHeight = style.Scale(val.Float())
		if abs := lh.Get("absolute"); abs.Exists() {
			if !abs.IsBool() {
				return nil, parseErr(abs.Index, "absolute must be a boolean")
			}
			para.LineHeight.Absolute = abs.Bool()
		}
	}
	if l := res.Get("list"); l.Exists() {
		kind, err := style.ParseListKind(l.String())
		if err != nil || l.Type != gjson.String {
			return nil, parseErr(l.Index, "invalid list kind %s", l.Raw)
		}
		para.List = kind
	}

	runsRes := res.Get("runs")
	if runsRes.Exists() && !runsRes.IsArray() {
		return nil, parseErr(runsRes.Index, "runs must be an array")
	}
	n := int(runsRes.Get("#").Int())
	runs := make([]*document.Run, 0, n)
	for i := 0; i < n; i++ {
		rr := runsRes.Get(strconv.Itoa(i))
		if !rr.IsObject() {
			return nil, parseErr(rr.Index, "run must be an object")
		}
		text := rr.Get("text")
		if text.Type != gjson.String {
			return nil, parseErr(rr.Index, "run text must be a string")
		}
		if strings.ContainsAny(text.String(), "\r\n") {
			return nil, parseErr(text.Index, "run text must not contain line breaks")
		}
		st := def
		if sr := rr.Get("style"); sr.Exists() {
			var err error
			if st, err = decodeChar(sr, def); err != nil {
				return nil, err
			}
		}
		runs = append(runs, document.NewRun(text.String(), st))
	}
	if len(runs) == 0 {
		runs = append(runs, document.NewRun("", def))
	}
	return document.NewBlock(para, runs...), nil
}

// decodeChar reads a style object; absent fields keep their value in base.
func decodeChar(res gjson.Result, base style.Char) (style.Char, error) {
	if !res.IsObject() {
		return style.Char{}, parseErr(res.Index, "style must be an object")
	}
	c := base
	if f := res.Get("family"); f.Exists() {
		if f.Type != gjson.String || f.String() == "" {
			return style.Char{}, parseErr(f.Index, "invalid font family %s", f.Raw)
		}
		c.Family = f.String()
	}
	if s := res.Get("size"); s.Exists() {
		if s.Type != gjson.Number || !style.Positive(s.Float()) {
			return style.Char{}, parseErr(s.Index, "invalid font size %s", s.Raw)
		}
		c.Size = s.Float()
	}
	for _, flag := range []struct {
		key string
		set func(bool)
	}{
		{"bold", func(on bool) { style.Bold.Set(&c, on) }},
		{"italic", func(on bool) { style.Italic.Set(&c, on) }},
		{"underline", func(on bool) { c.Underline = on }},
	} {
		if r := res.Get(flag.key); r.Exists() {
			if !r.IsBool() {
				return style.Char{}, parseErr(r.Index, "%s must be a boolean", flag.key)
			}
			flag.set(r.Bool())
		}
	}
	if col := res.Get("color"); col.Exists() {
		parsed, err := style.ParseColor(col.String())
		if err != nil || col.Type != gjson.String {
			return style.Char{}, parseErr(col.Index, "invalid color %s", col.Raw)
		}
		c.Color = parsed
	}
	return c, nil
}

// syntaxError locates the first syntax error in data.
func syntaxError(data []byte) error {
	var v any
	err := json.Unmarshal(data, &v)
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return &ParseError{Offset: int(se.Offset), Msg: se.Error(), Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return parseErr(0, "empty input")
	}
	return parseErr(-1, "malformed markup")
}
