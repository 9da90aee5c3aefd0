package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"stok-backend/internal/audit"
	"stok-backend/internal/i18n"
	"stok-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type StockResponse struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	Category    models.StockCategory `json:"category"`
	Unit        string               `json:"unit"`
	Quantity    decimal.Decimal      `json:"quantity"`
	MinQuantity decimal.Decimal      `json:"min_quantity"`
	Price       decimal.Decimal      `json:"price"`
	Currency    models.Currency      `json:"currency"`
	SupplierID  *uuid.UUID           `json:"supplier_id"`
	Notes       *string              `json:"notes"`
	IsLowStock  bool                 `json:"is_low_stock"`
	TotalValue  decimal.Decimal      `json:"total_value"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

func NewStockResponse(s models.Stock) StockResponse {
	return StockResponse{
		ID:          s.ID,
		Name:        s.Name,
		Category:    s.Category,
		Unit:        s.Unit,
		Quantity:    s.Quantity,
		MinQuantity: s.MinQuantity,
		Price:       s.Price,
		Currency:    s.Currency,
		SupplierID:  s.SupplierID,
		Notes:       s.Notes,
		IsLowStock:  s.IsLowStock(),
		TotalValue:  s.TotalValue(),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func newStockResponses(stocks []models.Stock) []StockResponse {
	res := make([]StockResponse, 0, len(stocks))
	for _, s := range stocks {
		res = append(res, NewStockResponse(s))
	}
	return res
}

type StockListResponse struct {
	Items          []StockResponse `json:"items"`
	Count          int             `json:"count"`
	LowStockCount  int             `json:"low_stock_count"`
	TotalValue     decimal.Decimal `json:"total_value"`
	TotalValueText string          `json:"total_value_text"`
	Category       string          `json:"category"`
	Search         string          `json:"search"`
	Sort           string          `json:"sort"`
	NextSort       string          `json:"next_sort"`
}

type BulkCreateRequest struct {
	Stocks []StockRequest `json:"stocks"`
}

// requestContext: audit kayıtları için istemci kimliğini taşıyan context
func requestContext(c *fiber.Ctx) context.Context {
	return audit.WithClientID(c.UserContext(), i18n.SessionFrom(c).ClientID)
}

// stockError: servis hatalarını HTTP yanıtına çevirir
func stockError(c *fiber.Ctx, err error) error {
	var (
		verr    *ValidationError
		partial *PartialReplaceError
		cerr    *CodecError
	)
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  verr.Error(),
			"fields": verr.Fields,
		})
	case errors.Is(err, ErrStockNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Stok bulunamadı")
	case errors.Is(err, ErrReplaceInProgress):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.As(err, &partial):
		log.Printf("[WARN] %v", partial)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   i18n.T(i18n.SessionFrom(c).Language, i18n.MsgImportPartial, partial.Deleted),
			"state":   ReplaceErrorPartial,
			"deleted": partial.Deleted,
		})
	case errors.As(err, &cerr):
		return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası okunamadı: "+cerr.Err.Error())
	default:
		log.Printf("Stok işlemi başarısız: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Stok işlemi başarısız")
	}
}

func parseListQuery(c *fiber.Ctx) (ListQuery, error) {
	q, err := ParseListQuery(c.Query("category"), c.Query("search"), c.Query("sort"))
	if err != nil {
		return ListQuery{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return q, nil
}

func parseStockID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Geçersiz stok ID")
	}
	return id, nil
}

// GET /api/stocks?category=hammadde&search=üre&sort=quantity_desc
func ListStocksHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parseListQuery(c)
		if err != nil {
			return err
		}

		view, err := svc.List(requestContext(c), q)
		if err != nil {
			return stockError(c, err)
		}

		return c.JSON(StockListResponse{
			Items:          newStockResponses(view.Items),
			Count:          view.Summary.Count,
			LowStockCount:  view.Summary.LowStock,
			TotalValue:     view.Summary.TotalValue,
			TotalValueText: i18n.FormatAmount(i18n.SessionFrom(c).Language, view.Summary.TotalValue),
			Category:       q.Category,
			Search:         q.Search,
			Sort:           q.Sort.String(),
			NextSort:       q.Sort.Next().String(),
		})
	}
}

// POST /api/stocks
func CreateStockHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body StockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		fields, err := body.Fields()
		if err != nil {
			return stockError(c, err)
		}

		stock, err := svc.Create(requestContext(c), fields)
		if err != nil {
			return stockError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": i18n.T(i18n.SessionFrom(c).Language, i18n.MsgStockCreated),
			"stock":   NewStockResponse(stock),
		})
	}
}

// PUT /api/stocks/:id
// Tüm alanlar değiştirilir; gönderilmeyen alanlar varsayılan değere döner
func UpdateStockHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseStockID(c)
		if err != nil {
			return err
		}

		var body StockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		fields, err := body.Fields()
		if err != nil {
			return stockError(c, err)
		}

		stock, err := svc.Update(requestContext(c), id, fields)
		if err != nil {
			return stockError(c, err)
		}

		return c.JSON(fiber.Map{
			"message": i18n.T(i18n.SessionFrom(c).Language, i18n.MsgStockUpdated),
			"stock":   NewStockResponse(stock),
		})
	}
}

// DELETE /api/stocks/:id (soft delete)
func DeleteStockHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseStockID(c)
		if err != nil {
			return err
		}

		if err := svc.Delete(requestContext(c), id); err != nil {
			return stockError(c, err)
		}

		return c.JSON(fiber.Map{
			"message": i18n.T(i18n.SessionFrom(c).Language, i18n.MsgStockDeleted),
		})
	}
}

// POST /api/stocks/bulk-create
func BulkCreateStocksHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body BulkCreateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		batch := make([]StockFields, 0, len(body.Stocks))
		for i, req := range body.Stocks {
			fields, err := req.Fields()
			if err != nil {
				var verr *ValidationError
				if errors.As(err, &verr) {
					for j := range verr.Fields {
						verr.Fields[j].Field = fmt.Sprintf("stocks[%d].%s", i, verr.Fields[j].Field)
					}
				}
				return stockError(c, err)
			}
			batch = append(batch, fields)
		}

		created, err := svc.BulkCreate(requestContext(c), batch)
		if err != nil {
			return stockError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": i18n.T(i18n.SessionFrom(c).Language, i18n.MsgBulkCreated, len(created)),
			"count":   len(created),
			"stocks":  newStockResponses(created),
		})
	}
}

// DELETE /api/stocks/bulk-delete
// Tüm aktif stokları siler (soft delete)
func BulkDeleteStocksHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deleted, err := svc.BulkDelete(requestContext(c))
		if err != nil {
			return stockError(c, err)
		}

		return c.JSON(fiber.Map{
			"message": i18n.T(i18n.SessionFrom(c).Language, i18n.MsgBulkDeleted),
			"deleted": deleted,
		})
	}
}

// GET /api/stocks/export?category=&search=&sort=
// Listede görünen stokları aynı sırayla Excel dosyası olarak indirir
func ExportStocksHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parseListQuery(c)
		if err != nil {
			return err
		}

		buf, _, err := svc.Export(requestContext(c), q)
		if err != nil {
			var cerr *CodecError
			if errors.As(err, &cerr) {
				log.Printf("Excel oluşturulamadı: %v", err)
				return fiber.NewError(fiber.StatusInternalServerError, "Excel dosyası oluşturulamadı")
			}
			return stockError(c, err)
		}

		c.Set(fiber.HeaderContentType, XLSXContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", ExportFilename(time.Now())))
		return c.Send(buf.Bytes())
	}
}

// openUpload: multipart "file" alanındaki xlsx dosyasını açar
func openUpload(c *fiber.Ctx, maxBytes int64) (io.ReadCloser, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Dosya yüklenemedi: "+err.Error())
	}

	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".xlsx", ".xlsm":
	default:
		return nil, fiber.NewError(fiber.StatusBadRequest, "Sadece .xlsx dosyaları yüklenebilir")
	}

	if maxBytes > 0 && fileHeader.Size > maxBytes {
		return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Dosya çok büyük (en fazla %d bayt)", maxBytes))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Dosya açılamadı: "+err.Error())
	}
	return file, nil
}

// POST /api/stocks/parse-excel
// Dosyayı okur ve kaydetmeden önizleme için satırları döner
func ParseExcelHandler(svc *Service, maxBytes int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		file, err := openUpload(c, maxBytes)
		if err != nil {
			return err
		}
		defer file.Close()

		batch, err := svc.ParseImport(file)
		if err != nil {
			return stockError(c, err)
		}

		return c.JSON(fiber.Map{
			"count":  len(batch),
			"stocks": batch,
		})
	}
}

// POST /api/stocks/import
// Mevcut tüm aktif stoklar silinir ve dosyadaki satırlar eklenir
func ImportStocksHandler(svc *Service, maxBytes int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		file, err := openUpload(c, maxBytes)
		if err != nil {
			return err
		}
		defer file.Close()

		res, err := svc.Import(requestContext(c), file)
		if err != nil {
			return stockError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":  i18n.T(i18n.SessionFrom(c).Language, i18n.MsgImportCompleted, res.Inserted),
			"state":    res.State,
			"deleted":  res.Deleted,
			"inserted": res.Inserted,
		})
	}
}

// RegisterRoutes mounts the stock endpoints under router (usually /api/stocks).
func RegisterRoutes(router fiber.Router, svc *Service, maxUploadBytes int64) {
	router.Get("/", ListStocksHandler(svc))
	router.Post("/", CreateStockHandler(svc))
	router.Get("/export", ExportStocksHandler(svc))
	router.Post("/bulk-create", BulkCreateStocksHandler(svc))
	router.Delete("/bulk-delete", BulkDeleteStocksHandler(svc))
	router.Post("/parse-excel", ParseExcelHandler(svc, maxUploadBytes))
	router.Post("/import", ImportStocksHandler(svc, maxUploadBytes))
	router.Put("/:id", UpdateStockHandler(svc))
	router.Delete("/:id", DeleteStockHandler(svc))
}
