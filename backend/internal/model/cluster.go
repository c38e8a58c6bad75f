package model

// Cluster is one rejection reason inside a category. Maps to cluster.
// Seeded by migration and read-only afterwards.
type Cluster struct {
	ID          uint   `gorm:"primaryKey"                json:"id"`
	MainCluster string `gorm:"type:varchar(255);not null" json:"main_cluster"`
	SubCluster  string `gorm:"type:varchar(255);not null" json:"sub_cluster"`
	NamaOpsi    string `gorm:"type:varchar(255);not null" json:"nama_opsi"`
}

func (Cluster) TableName() string { return "cluster" }

// ClusterCategory binds a main_cluster name to its foreign-key column in logs.
type ClusterCategory struct {
	MainCluster string
	Column      string
}

// ClusterCategories lists the eight categories in review-checklist order.
var ClusterCategories = []ClusterCategory{
	{MainCluster: "Geo Tagging", Column: "geo_tagging"},
	{MainCluster: "Foto Sekolah", Column: "foto_sekolah"},
	{MainCluster: "Foto Box dan PIC", Column: "foto_box_dan_pic"},
	{MainCluster: "Kelengkapan Internet Satelit", Column: "kelengkapan_unit"},
	{MainCluster: "Serial Number Kardus", Column: "foto_serial_number_kardus"},
	{MainCluster: "Serial Number BAPP", Column: "serial_number_bapp"},
	{MainCluster: "Perangkat Terhubung Internet", Column: "perangkat_terhubung_internet"},
	{MainCluster: "BAPP", Column: "bapp"},
}

// CategoryFor returns the category for a main_cluster name.
func CategoryFor(mainCluster string) (ClusterCategory, bool) {
	for _, c := range ClusterCategories {
		if c.MainCluster == mainCluster {
			return c, true
		}
	}
	return ClusterCategory{}, false
}
