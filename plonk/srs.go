package plonk

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"

	"github.com/consensys/gnark-crypto/ecc/bn254/kzg"
	"github.com/schollz/progressbar/v3"
)

// LoadSRS returns a structured reference string of at least size points,
// reading it from a checksummed cache file under dir and downloading it
// first if the cache is missing or corrupt. Verification never needs the
// full SRS; this serves proving-side tooling.
func LoadSRS(dir, url, checksum string, size uint64) (*kzg.SRS, error) {
	p := path.Join(dir, fmt.Sprintf("SRS.%s.BIN", checksum[:min(8, len(checksum))]))
	buf, errread := os.ReadFile(p)
	sum := sha256.Sum256(buf)
	if errread != nil || hex.EncodeToString(sum[:]) != checksum {
		log.Println("local srs cache not found; downloading ...")
		var err error
		if buf, err = downloadSRS(p, url); err != nil {
			return nil, err
		}
		sum = sha256.Sum256(buf)
		if hex.EncodeToString(sum[:]) != checksum {
			return nil, errors.New("srs checksum mismatch")
		}
	}
	var srs kzg.SRS
	if _, err := srs.ReadFrom(bytes.NewReader(buf)); err != nil {
		return nil, err
	}
	if uint64(len(srs.Pk.G1)) < size {
		return nil, fmt.Errorf("srs holds %d points, need %d", len(srs.Pk.G1), size)
	}
	return &srs, nil
}

func downloadSRS(p, url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("srs download failed: %s", resp.Status)
	}
	var buf bytes.Buffer
	bar := progressbar.DefaultBytes(resp.ContentLength, "Downloading SRS")
	if _, err := io.Copy(io.MultiWriter(&buf, bar), resp.Body); err != nil {
		return nil, err
	}
	b := buf.Bytes()
	if err := os.MkdirAll(path.Dir(p), 0o755); err != nil {
		return nil, err
	}
	return b, os.WriteFile(p, b, 0o644)
}
