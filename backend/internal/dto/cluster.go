package dto

// ClusterResponse one taxonomy entry.
type ClusterResponse struct {
	ID          uint   `json:"id"`
	MainCluster string `json:"main_cluster"`
	SubCluster  string `json:"sub_cluster"`
	NamaOpsi    string `json:"nama_opsi"`
}
