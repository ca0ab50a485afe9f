// CLAUDE:SUMMARY Zip container helpers shared by the Word and ODT importers, with a cap on decompressed part size.
package docpipe

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/hazyhaar/folio/horosafe"
)

func openZip(data []byte) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	return zr, nil
}

// readZipPart reads one archive member, failing if it inflates beyond limit.
func readZipPart(zr *zip.Reader, name string, limit int64) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		data, err := horosafe.LimitedReadAll(rc, limit)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s not found in archive", name)
}
