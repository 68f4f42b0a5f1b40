package render

import (
	"io"
	"strconv"
)

// A small table of ANSI SGR codes; only the ones the renderer uses.

type ansiColor int

const (
	ansiReset     ansiColor = 0
	ansiBold      ansiColor = 1
	ansiResetBold ansiColor = 22 // "normal intensity"; ends bold without dropping the color
)

const (
	ansiFgHiBlue    ansiColor = 94
	ansiFgHiMagenta ansiColor = 95
	ansiFgHiCyan    ansiColor = 96
)

var (
	ansiCSI = []byte("\x1b[")
	ansiSGR = []byte{'m'}
)

func writeAnsi(wr io.Writer, codes ...ansiColor) (n int, err error) {
	buf := make([]byte, 0, 16)
	buf = append(buf, ansiCSI...)
	for i, code := range codes {
		if i > 0 {
			buf = append(buf, ';')
		}
		buf = strconv.AppendInt(buf, int64(code), 10)
	}
	buf = append(buf, ansiSGR...)
	return wr.Write(buf)
}
