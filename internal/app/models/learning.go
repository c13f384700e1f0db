package models

import (
	"time"

	"github.com/aaeducates/backend/internal/app/polyref"
)

// Module is a unit of learning content
type Module struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title" validate:"required,max=255"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"video_url" validate:"omitempty,url"`
	ResourceFile string    `json:"resource_file"`
	CreatedBy    *int64    `json:"created_by"`
	IsPublished  bool      `json:"is_published"`
	CreatedAt    time.Time `json:"created_at"`
}

// Resource is a downloadable file, optionally attached to a module
type Resource struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title" validate:"required,max=255"`
	File       string    `json:"file"`
	Category   string    `json:"category" validate:"max=100"`
	ModuleID   *int64    `json:"module"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Workbook is a purchasable PDF workbook
type Workbook struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title" validate:"required,max=255"`
	Description string    `json:"description"`
	Price       float64   `json:"price" validate:"gte=0"`
	PDFFile     string    `json:"pdf_file"`
	CreatedBy   *int64    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// PurchaseStatus is the payment state of a workbook purchase
type PurchaseStatus string

const (
	PurchasePending PurchaseStatus = "PENDING"
	PurchasePaid    PurchaseStatus = "PAID"
	PurchaseFailed  PurchaseStatus = "FAILED"
)

// WorkbookPurchase records a workbook bought by a parent or a school
type WorkbookPurchase struct {
	ID         int64 `json:"id"`
	WorkbookID int64 `json:"workbook" validate:"required"`

	// PurchaserType and PurchaserID are write-only inputs resolved into Purchaser
	PurchaserType string          `json:"purchaser_type,omitempty"`
	PurchaserID   int64           `json:"purchaser_id,omitempty"`
	Purchaser     polyref.Ref     `json:"purchaser"`
	PurchaserInfo *polyref.Target `json:"purchaser_detail,omitempty"`

	PurchaseDate  time.Time      `json:"purchase_date"`
	PaymentStatus PurchaseStatus `json:"payment_status" validate:"omitempty,oneof=PENDING PAID FAILED"`
	TransactionID string         `json:"transaction_id"`
}
