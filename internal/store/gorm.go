package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/DylanJC13/movil-2/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store implements Gateway, Reader, CatalogStore and ClientStore on gorm.
type Store struct {
	db *gorm.DB
}

var (
	_ Gateway      = (*Store)(nil)
	_ Reader       = (*Store)(nil)
	_ CatalogStore = (*Store)(nil)
	_ ClientStore  = (*Store)(nil)
	_ CourseStore  = (*Store)(nil)
)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Ping checks the underlying connection pool.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return classify("ping", err)
	}
	return classify("ping", sqlDB.PingContext(ctx))
}

func (s *Store) WithinTx(ctx context.Context, timeout time.Duration, fn func(Tx) error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return classify("begin transaction", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if timeout > 0 && s.db.Dialector.Name() == "postgres" {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", timeout.Milliseconds())
		if err := tx.Exec(stmt).Error; err != nil {
			rollback(tx)
			return classify("set lock timeout", err)
		}
	}

	if err := fn(&gormTx{db: tx}); err != nil {
		rollback(tx)
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return classify("commit", err)
	}
	return nil
}

func rollback(tx *gorm.DB) {
	// the driver already rolled back when the context expired
	if err := tx.Rollback().Error; err != nil && !errors.Is(err, sql.ErrTxDone) {
		log.Printf("[DB] rollback failed: %v", err)
	}
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) FindClientByID(id uint) (*models.Client, error) {
	var c models.Client
	if err := t.db.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, classify("find client", err)
	}
	return &c, nil
}

func (t *gormTx) LockProductByID(id uint) (*models.Product, error) {
	var p models.Product
	err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, classify("lock product", err)
	}
	return &p, nil
}

// DecrementProductStock refuses to take stock below zero even without a lock.
func (t *gormTx) DecrementProductStock(id uint, amount int) error {
	res := t.db.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, amount).
		Update("stock", gorm.Expr("stock - ?", amount))
	if res.Error != nil {
		return classify("decrement stock", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("decrement stock of product %d: %w", id, ErrStockChanged)
	}
	return nil
}

func (t *gormTx) InsertInvoiceHeader(h NewInvoiceHeader) (*InsertedInvoice, error) {
	inv := models.Invoice{
		ClientID: h.ClientID,
		Subtotal: h.Subtotal,
		Tax:      h.Tax,
		Total:    h.Total,
		Status:   models.InvoiceStatusIssued,
		Note:     h.Note,
	}
	if err := t.db.Create(&inv).Error; err != nil {
		return nil, classify("insert invoice", err)
	}
	out := &InsertedInvoice{ID: inv.ID, IssuedAt: inv.IssuedAt, Status: inv.Status}
	if inv.Number != nil {
		out.Number = *inv.Number
	}
	return out, nil
}

func (t *gormTx) InsertInvoiceDetailLine(l NewInvoiceLine) error {
	line := models.InvoiceLine{
		InvoiceID: l.InvoiceID,
		ProductID: l.ProductID,
		Quantity:  l.Quantity,
		UnitPrice: l.UnitPrice,
		Subtotal:  l.Subtotal,
	}
	return classify("insert invoice line", t.db.Create(&line).Error)
}

const headerColumns = "i.id, i.number, i.issued_at, i.subtotal, i.tax, i.total, i.status, i.note, " +
	"i.client_id, c.name AS client_name, c.identification AS client_identification"

const lineColumns = "d.id, d.invoice_id, d.product_id, p.name AS description, d.quantity, d.unit_price, d.subtotal"

func (s *Store) headers(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("invoices AS i").
		Select(headerColumns).
		Joins("JOIN clients AS c ON c.id = i.client_id")
}

func (s *Store) lines(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("invoice_lines AS d").
		Select(lineColumns).
		Joins("JOIN products AS p ON p.id = d.product_id")
}

func (s *Store) FindInvoiceHeaderWithClient(ctx context.Context, id uint) (*InvoiceHeaderRow, error) {
	var row InvoiceHeaderRow
	res := s.headers(ctx).Where("i.id = ?", id).Limit(1).Scan(&row)
	if res.Error != nil {
		return nil, classify("find invoice", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &row, nil
}

func (s *Store) FindInvoiceDetailLinesWithProductNames(ctx context.Context, invoiceID uint) ([]InvoiceLineRow, error) {
	rows := []InvoiceLineRow{}
	if err := s.lines(ctx).Where("d.invoice_id = ?", invoiceID).Order("d.id ASC").Scan(&rows).Error; err != nil {
		return nil, classify("find invoice lines", err)
	}
	return rows, nil
}

func (s *Store) ListRecentInvoicesWithClientsAndDetails(ctx context.Context, limit int) ([]InvoiceRow, error) {
	var headers []InvoiceHeaderRow
	if err := s.headers(ctx).Order("i.issued_at DESC, i.id DESC").Limit(limit).Scan(&headers).Error; err != nil {
		return nil, classify("list invoices", err)
	}
	out := make([]InvoiceRow, 0, len(headers))
	if len(headers) == 0 {
		return out, nil
	}

	ids := make([]uint, len(headers))
	for i, h := range headers {
		ids[i] = h.ID
	}
	var lines []InvoiceLineRow
	if err := s.lines(ctx).Where("d.invoice_id IN ?", ids).Order("d.invoice_id, d.id ASC").Scan(&lines).Error; err != nil {
		return nil, classify("list invoice lines", err)
	}
	byInvoice := make(map[uint][]InvoiceLineRow, len(headers))
	for _, l := range lines {
		byInvoice[l.InvoiceID] = append(byInvoice[l.InvoiceID], l)
	}
	for _, h := range headers {
		ls := byInvoice[h.ID]
		if ls == nil {
			ls = []InvoiceLineRow{}
		}
		out = append(out, InvoiceRow{InvoiceHeaderRow: h, Lines: ls})
	}
	return out, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Order("name, id").Find(&products).Error; err != nil {
		return nil, classify("list products", err)
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, classify("get product", err)
	}
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	return classify("create product", s.db.WithContext(ctx).Create(p).Error)
}

func (s *Store) ListLowStock(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Where("stock <= min_stock").Order("name, id").Find(&products).Error; err != nil {
		return nil, classify("list low stock", err)
	}
	return products, nil
}

func (s *Store) ListClients(ctx context.Context) ([]models.Client, error) {
	var clients []models.Client
	if err := s.db.WithContext(ctx).Order("name, id").Find(&clients).Error; err != nil {
		return nil, classify("list clients", err)
	}
	return clients, nil
}

func (s *Store) CreateClient(ctx context.Context, c *models.Client) error {
	return classify("create client", s.db.WithContext(ctx).Create(c).Error)
}

// ListCourses returns every course, earliest start first.
func (s *Store) ListCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := s.db.WithContext(ctx).Order("start_date ASC, id ASC").Find(&courses).Error; err != nil {
		return nil, classify("list courses", err)
	}
	return courses, nil
}

func (s *Store) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	var c models.Course
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, classify("get course", err)
	}
	return &c, nil
}

func (s *Store) CreateCourse(ctx context.Context, c *models.Course) error {
	return classify("create course", s.db.WithContext(ctx).Create(c).Error)
}

func (s *Store) CountCourses(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Course{}).Count(&n).Error; err != nil {
		return 0, classify("count courses", err)
	}
	return n, nil
}
