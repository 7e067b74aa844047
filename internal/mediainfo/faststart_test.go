package mediainfo

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func box(boxType string, payload []byte) []byte {
	buf := make([]byte, 8+len(payload))
	binary.BigEndian.PutUint32(buf[:4], uint32(8+len(payload)))
	copy(buf[4:8], boxType)
	copy(buf[8:], payload)
	return buf
}

func writeBoxes(t *testing.T, boxes ...[]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.mp4")
	var data []byte
	for _, b := range boxes {
		data = append(data, b...)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDetectFastStartMoovFirst(t *testing.T) {
	path := writeBoxes(t,
		box("ftyp", []byte("isom")),
		box("moov", make([]byte, 64)),
		box("mdat", make([]byte, 128)),
	)

	enabled, conclusive, err := detectFastStart(path)
	if err != nil {
		t.Fatalf("detectFastStart: %v", err)
	}
	if !conclusive || !enabled {
		t.Errorf("got enabled=%v conclusive=%v, want both true", enabled, conclusive)
	}
}

func TestDetectFastStartMdatFirst(t *testing.T) {
	path := writeBoxes(t,
		box("ftyp", []byte("isom")),
		box("mdat", make([]byte, 128)),
		box("moov", make([]byte, 64)),
	)

	enabled, conclusive, err := detectFastStart(path)
	if err != nil {
		t.Fatalf("detectFastStart: %v", err)
	}
	if !conclusive || enabled {
		t.Errorf("got enabled=%v conclusive=%v, want false/true", enabled, conclusive)
	}
}

func TestDetectFastStartInconclusive(t *testing.T) {
	// Neither moov nor mdat inside the window.
	path := writeBoxes(t,
		box("ftyp", []byte("isom")),
		box("free", make([]byte, fastStartWindow)),
	)

	enabled, conclusive, err := detectFastStart(path)
	if err != nil {
		t.Fatalf("detectFastStart: %v", err)
	}
	if conclusive || enabled {
		t.Errorf("got enabled=%v conclusive=%v, want both false", enabled, conclusive)
	}
}

func TestDetectFastStartTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stub.mp4")
	if err := os.WriteFile(path, []byte{0, 0}, 0o644); err != nil {
		t.Fatal(err)
	}

	_, conclusive, err := detectFastStart(path)
	if err != nil {
		t.Fatalf("detectFastStart: %v", err)
	}
	if conclusive {
		t.Error("truncated file must be inconclusive, not an error")
	}
}

func TestDetectFastStartLargesizeBox(t *testing.T) {
	// size==1 means a 64-bit largesize follows the type field.
	header := make([]byte, 16)
	binary.BigEndian.PutUint32(header[:4], 1)
	copy(header[4:8], "skip")
	binary.BigEndian.PutUint64(header[8:16], 16)

	path := writeBoxes(t, header, box("moov", make([]byte, 16)))

	enabled, conclusive, err := detectFastStart(path)
	if err != nil {
		t.Fatalf("detectFastStart: %v", err)
	}
	if !conclusive || !enabled {
		t.Errorf("got enabled=%v conclusive=%v, want both true", enabled, conclusive)
	}
}
