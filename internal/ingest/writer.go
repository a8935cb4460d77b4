package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
)

// WriteCSV writes s in the loader's input format. Optional columns are
// written when the first hour carries them.
func WriteCSV(w io.Writer, s domain.Series) error {
	withGW := len(s.Hours) > 0 && s.Hours[0].GroundwaterIndex != nil
	withImp := len(s.Hours) > 0 && s.Hours[0].ImperviousFraction != nil

	header := append([]string(nil), domain.RequiredColumns...)
	if withGW {
		header = append(header, domain.ColumnGroundwater)
	}
	if withImp {
		header = append(header, domain.ColumnImperviousFraction)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, h := range s.Hours {
		rec := []string{
			h.Timestamp.Format(time.DateTime),
			formatFloat(h.RainfallMM),
			formatFloat(h.SoilMoisture),
			formatFloat(h.RiverDischargeM3S),
		}
		if withGW {
			rec = append(rec, formatOptional(h.GroundwaterIndex))
		}
		if withImp {
			rec = append(rec, formatOptional(h.ImperviousFraction))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes s to path, zstd-compressed when path ends in .zst.
func WriteFile(path string, s domain.Series) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if !strings.HasSuffix(path, ".zst") {
		return WriteCSV(f, s)
	}

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("zstd writer %s: %w", path, err)
	}
	if err := WriteCSV(enc, s); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
