package inventory

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrStockNotFound     = errors.New("stok bulunamadı")
	ErrReplaceInProgress = errors.New("başka bir toplu içe aktarma işlemi devam ediyor")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError: repository çağrısından önce yakalanan geçersiz girdi
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "geçersiz veri: " + strings.Join(parts, "; ")
}

// RepositoryError: veritabanından dönen hata
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("stok deposu (%s): %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }

// CodecError: Excel dosyası okunamadı veya oluşturulamadı
type CodecError struct {
	Op  string
	Err error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("excel %s: %v", e.Op, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

// PartialReplaceError: eski kayıtlar silindi ama yenileri eklenemedi.
// Bu durumda aktif stok listesi boştur ve geri alma yapılmaz.
type PartialReplaceError struct {
	Deleted int64
	Err     error
}

func (e *PartialReplaceError) Error() string {
	return fmt.Sprintf("toplu değiştirme yarıda kaldı: %d stok silindi, yeni kayıtlar eklenemedi: %v", e.Deleted, e.Err)
}

func (e *PartialReplaceError) Unwrap() error { return e.Err }
