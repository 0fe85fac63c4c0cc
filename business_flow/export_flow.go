package businessflow

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/amirphl/Kusanagi/repository"
	"github.com/xuri/excelize/v2"
)

// LinkExportFlow produces downloadable exports of a customer's links
type LinkExportFlow interface {
	DownloadLinksExcel(ctx context.Context, customerID uint) (string, []byte, error)
}

type LinkExportFlowImpl struct {
	linkRepo repository.LinkRepository
	baseURL  string
}

func NewLinkExportFlow(linkRepo repository.LinkRepository, baseURL string) LinkExportFlow {
	return &LinkExportFlowImpl{
		linkRepo: linkRepo,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

func (f *LinkExportFlowImpl) DownloadLinksExcel(ctx context.Context, customerID uint) (string, []byte, error) {
	rows, err := f.linkRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return "", nil, NewBusinessError("FETCH_LINKS_FAILED", "Failed to fetch customer links", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "links"
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"short_code", "short_url", "long_url", "custom_alias", "topic", "clicks", "created_at", "last_accessed_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, r := range rows {
		alias := ""
		if r.CustomAlias != nil {
			alias = *r.CustomAlias
		}
		lastAccessed := ""
		if r.LastAccessedAt != nil {
			lastAccessed = r.LastAccessedAt.UTC().Format(time.RFC3339)
		}
		record := []string{
			r.ShortCode,
			ShortURL(f.baseURL, r.ShortCode),
			r.LongURL,
			alias,
			string(r.Topic),
			strconv.FormatInt(r.Clicks, 10),
			r.CreatedAt.UTC().Format(time.RFC3339),
			lastAccessed,
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	filename := "links_" + strconv.FormatUint(uint64(customerID), 10) + ".xlsx"
	return filename, buf.Bytes(), nil
}
