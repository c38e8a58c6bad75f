package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/service"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/response"
)

// ClusterHandler taxonomy endpoint.
type ClusterHandler struct {
	clusterSvc service.ClusterService
}

// NewClusterHandler creates a ClusterHandler.
func NewClusterHandler(clusterSvc service.ClusterService) *ClusterHandler {
	return &ClusterHandler{clusterSvc: clusterSvc}
}

// ListClusters GET /api/master/clusters
func (h *ClusterHandler) ListClusters(c *gin.Context) {
	list, err := h.clusterSvc.ListResponses(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, list)
}
