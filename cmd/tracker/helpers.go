package main

import (
	"fmt"
	"os"

	"github.com/kirillkom/consent-tracker/internal/core/domain"
	"github.com/kirillkom/consent-tracker/internal/infrastructure/report"
)

func writeWorkbook(path string, snap domain.Snapshot) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close workbook: %w", cerr)
		}
	}()

	if err := report.WriteXLSX(f, snap); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
