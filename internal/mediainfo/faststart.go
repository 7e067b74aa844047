package mediainfo

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
)

// fastStartWindow bounds how far into the file the box walk reads. The
// moov atom of a fast-start file appears within the first few KiB; 32KiB
// is generous without touching bulk media data.
const fastStartWindow = 32 * 1024

// detectFastStart walks top-level ISO BMFF boxes in the head of an
// MP4-family file and reports whether moov precedes mdat. conclusive is
// false when neither box was seen inside the window, in which case the
// caller should treat the result as unknown rather than a failure.
func detectFastStart(path string) (enabled, conclusive bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return false, false, err
	}
	defer f.Close()

	var offset int64
	header := make([]byte, 8)
	for offset+8 <= fastStartWindow {
		if _, err := f.ReadAt(header, offset); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return false, false, nil
			}
			return false, false, err
		}

		size := int64(binary.BigEndian.Uint32(header[:4]))
		boxType := string(header[4:8])

		switch boxType {
		case "moov":
			return true, true, nil
		case "mdat":
			return false, true, nil
		}

		switch size {
		case 1:
			// 64-bit largesize follows the header.
			large := make([]byte, 8)
			if _, err := f.ReadAt(large, offset+8); err != nil {
				return false, false, nil
			}
			size = int64(binary.BigEndian.Uint64(large))
		case 0:
			// Box extends to end of file; nothing follows it.
			return false, false, nil
		}
		if size < 8 {
			return false, false, nil
		}
		offset += size
	}
	return false, false, nil
}
