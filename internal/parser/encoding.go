package parser

import (
	"bytes"
	"io"

	"golang.org/x/text/encoding/charmap"
)

// decodeWindows1250 converts a legacy bank export to UTF-8. The Czech bank
// CSV exports (ČS, KB, ČSOB, Sberbank, Raiffeisenbank) are Windows-1250.
func decodeWindows1250(data []byte) ([]byte, error) {
	reader := charmap.Windows1250.NewDecoder().Reader(bytes.NewReader(data))
	return io.ReadAll(reader)
}
