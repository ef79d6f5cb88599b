package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Jacket-69/Necronomics/internal/models"
	"github.com/Jacket-69/Necronomics/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryHandler serves category endpoints.
type CategoryHandler struct {
	DB *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{DB: db}
}

// patchString distinguishes "field absent" (Set=false) from "field present
// but null" (Set=true, Value=nil). Needed for icon/parent updates where
// absent means keep and null means clear.
type patchString struct {
	Set   bool
	Value *string
}

func (p *patchString) UnmarshalJSON(b []byte) error {
	p.Set = true
	if string(b) == "null" {
		p.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	p.Value = &s
	return nil
}

type createCategoryReq struct {
	Name     string  `json:"name" binding:"required,max=64"`
	Type     string  `json:"type"`
	Icon     *string `json:"icon"`
	ParentID *string `json:"parentId"`
}

type updateCategoryReq struct {
	Name     *string     `json:"name"`
	Type     *string     `json:"type"`
	Icon     patchString `json:"icon"`
	ParentID patchString `json:"parentId"`
}

// ListCategories returns all active categories: grouped by type, parents
// before children, alphabetical within each group.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	var categories []models.Category
	if err := h.DB.Where("is_active = ?", true).
		Order("type, parent_id IS NOT NULL, name").
		Find(&categories).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list categories")
		return
	}

	util.Success(c, util.Response{"categories": categories})
}

// GetCategory returns a single category by ID.
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	var category models.Category
	if err := h.DB.First(&category, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load category")
		}
		return
	}

	util.Success(c, util.Response{"category": category})
}

// CreateCategory creates a category. A child inherits its parent's type,
// and the parent must be a root category (one level of nesting only).
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req createCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	finalType := req.Type

	if req.ParentID != nil {
		var parent models.Category
		if err := h.DB.First(&parent, "id = ?", *req.ParentID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				util.Error(c, http.StatusNotFound, util.CodeNotFound, "parent category not found")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load parent category")
			}
			return
		}
		if parent.ParentID != nil {
			util.Error(c, http.StatusConflict, util.CodeConflict, "subcategories cannot have subcategories (one level of nesting only)")
			return
		}
		// Inherit type from parent
		finalType = parent.Type
	}

	if !models.ValidEntryType(finalType) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "category type must be 'income' or 'expense'")
		return
	}

	category := models.Category{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Type:     finalType,
		Icon:     req.Icon,
		ParentID: req.ParentID,
		IsActive: true,
	}

	if err := h.DB.Create(&category).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save category")
		return
	}

	util.Success(c, util.Response{"category": category})
}

// UpdateCategory patches a category while enforcing the nesting and type
// rules. A type change is rejected while the category or any child has
// linked transactions, and cascades to children otherwise.
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id := c.Param("id")

	var req updateCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var existing models.Category
	if err := h.DB.First(&existing, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load category")
		}
		return
	}

	var subcategories []models.Category
	if err := h.DB.Where("parent_id = ?", id).Find(&subcategories).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load subcategories")
		return
	}

	typeChanged := req.Type != nil && *req.Type != existing.Type
	if typeChanged {
		if !models.ValidEntryType(*req.Type) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "category type must be 'income' or 'expense'")
			return
		}

		ids := []string{id}
		for _, sub := range subcategories {
			ids = append(ids, sub.ID)
		}
		var txnCount int64
		if err := h.DB.Model(&models.Transaction{}).Where("category_id IN ?", ids).Count(&txnCount).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check transactions")
			return
		}
		if txnCount > 0 {
			util.Error(c, http.StatusConflict, util.CodeConflict, "cannot change the type of a category with linked transactions")
			return
		}
	}

	if req.ParentID.Set {
		// A category that has children cannot become a child itself.
		if len(subcategories) > 0 && req.ParentID.Value != nil {
			util.Error(c, http.StatusConflict, util.CodeConflict, "cannot move a parent category under another category")
			return
		}

		if req.ParentID.Value != nil {
			var newParent models.Category
			if err := h.DB.First(&newParent, "id = ?", *req.ParentID.Value).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					util.Error(c, http.StatusNotFound, util.CodeNotFound, "parent category not found")
				} else {
					util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load parent category")
				}
				return
			}
			if newParent.ParentID != nil {
				util.Error(c, http.StatusConflict, util.CodeConflict, "subcategories cannot have subcategories (one level of nesting only)")
				return
			}

			effectiveType := existing.Type
			if req.Type != nil {
				effectiveType = *req.Type
			}
			if newParent.Type != effectiveType {
				util.Error(c, http.StatusConflict, util.CodeConflict, "a subcategory's type must match its parent's type")
				return
			}
		}
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Type != nil {
		existing.Type = *req.Type
	}
	if req.Icon.Set {
		existing.Icon = req.Icon.Value
	}
	if req.ParentID.Set {
		existing.ParentID = req.ParentID.Value
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		if typeChanged && len(subcategories) > 0 {
			if err := tx.Model(&models.Category{}).
				Where("parent_id = ?", id).
				Update("type", existing.Type).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save category")
		return
	}

	util.Success(c, util.Response{"category": existing})
}

// DeleteCategory removes a category and its children. Blocked while the
// category or any child has linked transactions.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id := c.Param("id")

	var existing models.Category
	if err := h.DB.First(&existing, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load category")
		}
		return
	}

	var txnCount int64
	if err := h.DB.Model(&models.Transaction{}).Where("category_id = ?", id).Count(&txnCount).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check transactions")
		return
	}
	if txnCount > 0 {
		util.Error(c, http.StatusConflict, util.CodeConflict,
			fmt.Sprintf("this category has %d linked transactions, reassign them before deleting", txnCount))
		return
	}

	var subcategories []models.Category
	if err := h.DB.Where("parent_id = ?", id).Find(&subcategories).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load subcategories")
		return
	}
	for _, sub := range subcategories {
		var subTxnCount int64
		if err := h.DB.Model(&models.Transaction{}).Where("category_id = ?", sub.ID).Count(&subTxnCount).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check transactions")
			return
		}
		if subTxnCount > 0 {
			util.Error(c, http.StatusConflict, util.CodeConflict,
				fmt.Sprintf("subcategory %q has %d linked transactions, reassign them before deleting", sub.Name, subTxnCount))
			return
		}
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if len(subcategories) > 0 {
			if err := tx.Where("parent_id = ?", id).Delete(&models.Category{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&existing).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete category")
		return
	}

	util.Success(c, util.Response{"message": "category deleted"})
}
