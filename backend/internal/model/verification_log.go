package model

import "time"

// VerificationLog is a reviewer's decision for one cutoff item. Maps to logs.
// Each cluster column is nil when the category has no defect.
type VerificationLog struct {
	ID                         uint       `gorm:"primaryKey"                        json:"id"`
	CutoffID                   uint       `gorm:"not null;uniqueIndex"              json:"cutoff_id"`
	SerialNumber               string     `gorm:"type:varchar(255);not null"        json:"serial_number"`
	GeoTagging                 *uint      `gorm:"column:geo_tagging"                json:"geo_tagging"`
	FotoSekolah                *uint      `gorm:"column:foto_sekolah"               json:"foto_sekolah"`
	FotoBoxDanPIC              *uint      `gorm:"column:foto_box_dan_pic"           json:"foto_box_dan_pic"`
	KelengkapanUnit            *uint      `gorm:"column:kelengkapan_unit"           json:"kelengkapan_unit"`
	FotoSerialNumberKardus     *uint      `gorm:"column:foto_serial_number_kardus"  json:"foto_serial_number_kardus"`
	SerialNumberBAPP           *uint      `gorm:"column:serial_number_bapp"         json:"serial_number_bapp"`
	PerangkatTerhubungInternet *uint      `gorm:"column:perangkat_terhubung_internet" json:"perangkat_terhubung_internet"`
	BAPP                       *uint      `gorm:"column:bapp"                       json:"bapp"`
	UserID                     uint       `gorm:"not null"                          json:"user_id"`
	Status                     string     `gorm:"type:enum('REJECTED','VERIFIED');not null" json:"status"`
	TanggalBAPP                *time.Time `gorm:"column:tanggal_bapp;type:date"     json:"tanggal_bapp,omitempty"`
	CreatedAt                  time.Time  `json:"created_at"`
}

func (VerificationLog) TableName() string { return "logs" }

func (l *VerificationLog) field(column string) **uint {
	switch column {
	case "geo_tagging":
		return &l.GeoTagging
	case "foto_sekolah":
		return &l.FotoSekolah
	case "foto_box_dan_pic":
		return &l.FotoBoxDanPIC
	case "kelengkapan_unit":
		return &l.KelengkapanUnit
	case "foto_serial_number_kardus":
		return &l.FotoSerialNumberKardus
	case "serial_number_bapp":
		return &l.SerialNumberBAPP
	case "perangkat_terhubung_internet":
		return &l.PerangkatTerhubungInternet
	case "bapp":
		return &l.BAPP
	}
	return nil
}

// SetClusterRef stores clusterID in the named column. It returns false for unknown columns.
func (l *VerificationLog) SetClusterRef(column string, clusterID uint) bool {
	f := l.field(column)
	if f == nil {
		return false
	}
	id := clusterID
	*f = &id
	return true
}

// ClusterRef returns the cluster id stored in the named column.
func (l *VerificationLog) ClusterRef(column string) *uint {
	f := l.field(column)
	if f == nil {
		return nil
	}
	return *f
}

// HasRejection reports whether any category carries a defect.
func (l *VerificationLog) HasRejection() bool {
	for _, c := range ClusterCategories {
		if l.ClusterRef(c.Column) != nil {
			return true
		}
	}
	return false
}

// DeriveStatus sets Status from the cluster columns: REJECTED iff any is set.
func (l *VerificationLog) DeriveStatus() {
	if l.HasRejection() {
		l.Status = StatusRejected
		return
	}
	l.Status = StatusVerified
}
