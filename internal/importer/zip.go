package importer

import (
	"archive/zip"
	"bytes"
	"io"
)

// openArchive validates and opens a ZIP payload. A structurally invalid
// archive fails here, before any entity resolution begins, with the
// underlying zip error surfaced in the message.
func openArchive(data []byte) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, wrapError(err, "invalid ZIP archive")
	}
	return zr, nil
}

// archiveMember reads one named file out of the archive. The second return
// is false when the member is absent.
func archiveMember(zr *zip.Reader, name string) ([]byte, bool, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, false, wrapError(err, "failed to open archive member %q", name)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, false, wrapError(err, "failed to read archive member %q", name)
		}
		return data, true, nil
	}
	return nil, false, nil
}
