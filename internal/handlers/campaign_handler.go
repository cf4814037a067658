package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reachpoint/crm-backend/internal/models"
	"github.com/reachpoint/crm-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CampaignHandler handles campaign-related HTTP requests
type CampaignHandler struct {
	campaignService *services.CampaignService
}

// NewCampaignHandler creates a new CampaignHandler
func NewCampaignHandler(campaignService *services.CampaignService) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
	}
}

// CreateCampaign handles POST /campaigns
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var campaign models.Campaign
	if err := c.ShouldBindJSON(&campaign); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.campaignService.CreateCampaign(c, &campaign); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, campaign)
}

// GetCampaignByID handles GET /campaigns/:id
func (h *CampaignHandler) GetCampaignByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	campaign, err := h.campaignService.GetCampaignByID(c, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// GetAllCampaigns handles GET /campaigns
func (h *CampaignHandler) GetAllCampaigns(c *gin.Context) {
	page, limit := pagination(c)

	campaigns, err := h.campaignService.GetAllCampaigns(c, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, campaigns)
}

// GetCampaignCount handles GET /campaigns/count
func (h *CampaignHandler) GetCampaignCount(c *gin.Context) {
	count, err := h.campaignService.GetCampaignCount(c)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// UpdateCampaign handles PUT /campaigns/:id
func (h *CampaignHandler) UpdateCampaign(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var campaign models.Campaign
	if err := c.ShouldBindJSON(&campaign); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	campaign.ID = id

	if err := h.campaignService.UpdateCampaign(c, &campaign); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// DeleteCampaign handles DELETE /campaigns/:id
func (h *CampaignHandler) DeleteCampaign(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	if err := h.campaignService.DeleteCampaign(c, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Campaign deleted successfully"})
}

// PreviewAudience handles POST /campaigns/preview-audience
func (h *CampaignHandler) PreviewAudience(c *gin.Context) {
	var request struct {
		SegmentRules []models.SegmentRule `json:"segmentRules" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	audience, err := h.campaignService.PreviewAudience(c, request.SegmentRules)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(audience),
		"audience": audience,
	})
}

// GetCampaignAudience handles GET /campaigns/:id/audience
func (h *CampaignHandler) GetCampaignAudience(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	campaign, err := h.campaignService.GetCampaignByID(c, id)
	if err != nil {
		respondError(c, err)
		return
	}

	audience, err := h.campaignService.PreviewAudience(c, campaign.SegmentRules)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(audience),
		"audience": audience,
	})
}

// SendCampaign handles POST /campaigns/:id/send
func (h *CampaignHandler) SendCampaign(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	campaign, err := h.campaignService.SendCampaign(c, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// GenerateMessage handles POST /campaigns/generate-message
func (h *CampaignHandler) GenerateMessage(c *gin.Context) {
	var request struct {
		Prompt              string `json:"prompt" binding:"required"`
		AudienceDescription string `json:"audienceDescription"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message := h.campaignService.GenerateMessage(c, request.Prompt, request.AudienceDescription)

	c.JSON(http.StatusOK, gin.H{"message": message})
}
