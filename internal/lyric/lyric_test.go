package lyric

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultRoundTripIsByteIdentical(t *testing.T) {
	c := Default()
	if len(c) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(c))
	}

	out, err := Marshal(c)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.Equal(out, defaultDocument) {
		t.Errorf("re-export differs from source:\n%s", out)
	}
}

func TestUnmarshalFields(t *testing.T) {
	c := Default()

	if c[0].EffectiveKind() != KindPrelude {
		t.Errorf("line 0: expected prelude, got %s", c[0].Kind)
	}
	if len(c[0].Phrases) != 0 {
		t.Errorf("line 0: expected no phrases, got %d", len(c[0].Phrases))
	}

	main := c[1]
	if main.EffectiveKind() != KindNormal {
		t.Errorf("line 1: expected normal, got %s", main.Kind)
	}
	if main.Time != "00:51.56" {
		t.Errorf("line 1: expected time 00:51.56, got %q", main.Time)
	}
	first := main.Phrases[0]
	if first.Text != "最高到達点" || first.Duration != 70 {
		t.Errorf("line 1 phrase 0: unexpected %+v", first)
	}
	if first.Pronunciation != "トップスピード" || !first.PronunciationForced {
		t.Errorf("line 1 phrase 0: pronunciation not decoded: %+v", first)
	}
	if !main.Phrases[1].Emphasized {
		t.Error("line 1 phrase 1: expected kiai")
	}
	if main.Background == nil {
		t.Fatal("line 1: expected background voice")
	}
	if len(main.Background.Phrases) != 7 {
		t.Errorf("background: expected 7 phrases, got %d", len(main.Background.Phrases))
	}
	if got := main.Background.Start(); got != 52 {
		t.Errorf("background: expected start 52, got %v", got)
	}
	if got := main.TotalSeconds(); got != 4.5 {
		t.Errorf("line 1: expected total 4.5s, got %v", got)
	}
}

func TestUnmarshalVocalParts(t *testing.T) {
	doc := `[
		{"time": "00:01.00", "text": [], "is_secondary": true},
		{"time": "00:02.00", "text": [], "is_together": true},
		{"time": "00:03.00", "text": [], "is_secondary": false},
		{"time": "00:04.00", "text": [], "is_secondary": true, "is_together": true}
	]`
	c, err := Unmarshal([]byte(doc))
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	want := []VocalPart{PartSecondary, PartTogether, PartPrimary, PartTogether}
	for i, part := range want {
		if c[i].EffectivePart() != part {
			t.Errorf("line %d: expected %s, got %s", i, part, c[i].Part)
		}
	}

	out, err := Marshal(c[2:3])
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(out), `"is_secondary": false`) {
		t.Errorf("explicit false flag was dropped:\n%s", out)
	}
}

func TestFractionalDurationsRoundTrip(t *testing.T) {
	doc := []byte(`[
    {
        "time": "00:00.50",
        "text": [
            {
                "phrase": "a",
                "duration": 12.3
            },
            {
                "phrase": "b",
                "duration": 37.5
            }
        ]
    }
]
`)

	c, err := Unmarshal(doc)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if d := c[0].Phrases[0].Duration; d != 12.3 {
		t.Errorf("expected 12.3, got %v", d)
	}
	if got := c[0].TotalSeconds(); math.Abs(got-0.498) > 1e-9 {
		t.Errorf("expected 0.498s, got %v", got)
	}

	out, err := Marshal(c)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.Equal(out, doc) {
		t.Errorf("re-export differs from source:\n%s", out)
	}
}

func TestUnmarshalRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"object root", `{"time": "00:01.00"}`},
		{"string root", `"lyrics"`},
		{"empty", ``},
		{"truncated", `[{"time": "00:01.00"`},
		{"unknown type", `[{"time": "00:01.00", "type": "chorus"}]`},
		{"null line", `[null]`},
		{"wrong field type", `[{"time": 12}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Unmarshal([]byte(tt.input))
			if err == nil {
				t.Fatalf("expected error, got %d lines", len(c))
			}
			if !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("expected ErrInvalidDocument, got %v", err)
			}
			if c != nil {
				t.Errorf("expected no partial result, got %d lines", len(c))
			}
		})
	}
}

func TestUnmarshalEmptyArray(t *testing.T) {
	c, err := Unmarshal([]byte("  []  "))
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if c == nil || len(c) != 0 {
		t.Errorf("expected empty non-nil collection, got %#v", c)
	}
}

func TestMarshalNewLineIsMinimal(t *testing.T) {
	line := NewLine(10, Phrase{Text: "a&b", Duration: 50})
	out, err := Marshal(Collection{line})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `[
    {
        "time": "00:10.00",
        "text": [
            {
                "phrase": "a&b",
                "duration": 50
            }
        ]
    }
]
`
	if string(out) != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, out)
	}
}

func TestEqual(t *testing.T) {
	a := Default()
	b := Default()

	if !Equal(a, a) {
		t.Error("Equal(X, X) should be true")
	}
	if !Equal(a, b) || !Equal(b, a) {
		t.Error("separately decoded copies should compare equal")
	}

	b[1].Phrases[2].Duration++
	if Equal(a, b) || Equal(b, a) {
		t.Error("duration change should break equality symmetrically")
	}

	c := Default()
	c[1].Background = nil
	if Equal(a, c) {
		t.Error("missing background should break equality")
	}

	d := Default()
	d[0], d[2] = d[2], d[0]
	if Equal(a, d) {
		t.Error("equality must be order sensitive")
	}

	if !Equal(nil, Collection{}) {
		t.Error("nil and empty collections should compare equal")
	}
}

func TestEqualIgnoresZeroValueDefaults(t *testing.T) {
	a := Collection{{Track: Track{Time: "00:01.00"}}}
	b := Collection{{Kind: KindNormal, Part: PartPrimary, Track: Track{Time: "00:01.00"}}}
	if !Equal(a, b) {
		t.Error("zero kind/part should equal normal/primary")
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := Default()
	clone := orig.Clone()

	clone[1].Phrases[0].Text = "changed"
	clone[1].Background.Phrases[0].Duration = 1
	clone[1].Background.Time = "00:00.00"
	clone[3].Translation = "changed"

	if !Equal(orig, Default()) {
		t.Error("mutating a clone changed the original")
	}
	if Equal(orig, clone) {
		t.Error("clone mutations were not applied")
	}
}

func TestValidate(t *testing.T) {
	issues := Default().Validate()
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d: %v", len(issues), issues)
	}
	if issues[0].Line != 1 || !issues[0].Background {
		t.Errorf("expected background issue on line 1, got %s", issues[0])
	}

	c := Collection{
		{Kind: KindEnd, Track: Track{Time: "00:05.00", Phrases: []Phrase{{Text: "x", Duration: -5}}}},
	}
	issues = c.Validate()
	if len(issues) != 2 {
		t.Errorf("expected 2 issues, got %d: %v", len(issues), issues)
	}
}

func TestOpenAndWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lyrics.json")

	if err := WriteFile(path, Default()); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !Equal(c, Default()) {
		t.Error("file round trip changed the collection")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"not": "an array"}`), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if _, err := Open(bad); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("expected ErrInvalidDocument, got %v", err)
	}
}

func TestPhraseText(t *testing.T) {
	tr := Track{Phrases: []Phrase{{Text: "嘘"}, {Text: "じゃ"}, {Text: "ないと"}}}
	if got := tr.PhraseText(); got != "嘘じゃないと" {
		t.Errorf("expected %q, got %q", "嘘じゃないと", got)
	}
}
