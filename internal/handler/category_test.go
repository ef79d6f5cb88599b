package handler

import (
	"net/http"
	"testing"

	"github.com/Jacket-69/Necronomics/internal/models"

	"github.com/stretchr/testify/require"
)

type categoryResp struct {
	Category models.Category `json:"category"`
}

func createCategory(t *testing.T, r http.Handler, body map[string]interface{}) models.Category {
	t.Helper()

	w := doRequest(t, r, "POST", "/api/categories", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp categoryResp
	decodeData(t, w, &resp)
	return resp.Category
}

func TestCreateChildInheritsParentType(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	// declared income, but the parent is an expense category
	child := createCategory(t, r, map[string]interface{}{
		"name":     "Supermercado",
		"type":     models.TypeIncome,
		"parentId": "cat_comida",
	})

	require.Equal(t, models.TypeExpense, child.Type)
	require.NotNil(t, child.ParentID)
	require.Equal(t, "cat_comida", *child.ParentID)
}

func TestCreateCategoryOneLevelOnly(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	child := createCategory(t, r, map[string]interface{}{
		"name": "Supermercado", "parentId": "cat_comida",
	})

	w := doRequest(t, r, "POST", "/api/categories", map[string]interface{}{
		"name": "Verduras", "parentId": child.ID,
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateCategoryInvalidType(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	w := doRequest(t, r, "POST", "/api/categories", map[string]interface{}{
		"name": "Rara", "type": "transfer",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateCategoryTypeBlockedByTransactions(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	account := makeAccount(t, db, models.AccountTypeBank)

	child := createCategory(t, r, map[string]interface{}{
		"name": "Supermercado", "parentId": "cat_comida",
	})
	makeTransaction(t, db, account.ID, child.ID, models.TypeExpense, 1000, "2024-06-01")

	// the child's transactions block the parent's type change too
	w := doRequest(t, r, "PUT", "/api/categories/cat_comida", map[string]interface{}{
		"type": models.TypeIncome,
	})
	require.Equal(t, http.StatusConflict, w.Code)

	var parent models.Category
	require.NoError(t, db.First(&parent, "id = ?", "cat_comida").Error)
	require.Equal(t, models.TypeExpense, parent.Type)
}

func TestUpdateCategoryTypeCascadesToChildren(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	parent := createCategory(t, r, map[string]interface{}{
		"name": "Inversiones", "type": models.TypeExpense,
	})
	child := createCategory(t, r, map[string]interface{}{
		"name": "Acciones", "parentId": parent.ID,
	})

	w := doRequest(t, r, "PUT", "/api/categories/"+parent.ID, map[string]interface{}{
		"type": models.TypeIncome,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.Category
	require.NoError(t, db.First(&got, "id = ?", child.ID).Error)
	require.Equal(t, models.TypeIncome, got.Type)
}

func TestUpdateCategoryParentRules(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	parent := createCategory(t, r, map[string]interface{}{
		"name": "Mascotas", "type": models.TypeExpense,
	})
	createCategory(t, r, map[string]interface{}{
		"name": "Veterinario", "parentId": parent.ID,
	})

	// a category with children cannot become a child
	w := doRequest(t, r, "PUT", "/api/categories/"+parent.ID, map[string]interface{}{
		"parentId": "cat_hogar",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	// a child cannot move under a parent of a different type
	leaf := createCategory(t, r, map[string]interface{}{
		"name": "Propinas", "type": models.TypeExpense,
	})
	w = doRequest(t, r, "PUT", "/api/categories/"+leaf.ID, map[string]interface{}{
		"parentId": "cat_sueldo", // income parent
	})
	require.Equal(t, http.StatusConflict, w.Code)

	// moving under a matching root parent works
	w = doRequest(t, r, "PUT", "/api/categories/"+leaf.ID, map[string]interface{}{
		"parentId": "cat_hogar",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestUpdateCategoryIconTriState(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	cat := createCategory(t, r, map[string]interface{}{
		"name": "Gimnasio", "type": models.TypeExpense, "icon": "dumbbell",
	})

	// absent icon: kept
	w := doRequest(t, r, "PUT", "/api/categories/"+cat.ID, map[string]interface{}{
		"name": "Gym",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Category
	require.NoError(t, db.First(&got, "id = ?", cat.ID).Error)
	require.NotNil(t, got.Icon)
	require.Equal(t, "dumbbell", *got.Icon)

	// explicit null: cleared
	w = doRequest(t, r, "PUT", "/api/categories/"+cat.ID, map[string]interface{}{
		"icon": nil,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, db.First(&got, "id = ?", cat.ID).Error)
	require.Nil(t, got.Icon)
}

func TestDeleteCategoryBlockedByTransactions(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	account := makeAccount(t, db, models.AccountTypeBank)

	child := createCategory(t, r, map[string]interface{}{
		"name": "Supermercado", "parentId": "cat_comida",
	})
	makeTransaction(t, db, account.ID, child.ID, models.TypeExpense, 1000, "2024-06-01")

	// blocked by the child's transactions
	w := doRequest(t, r, "DELETE", "/api/categories/cat_comida", nil)
	require.Equal(t, http.StatusConflict, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Category{}).
		Where("id IN ?", []string{"cat_comida", child.ID}).Count(&count).Error)
	require.Equal(t, int64(2), count)
}

func TestDeleteCategoryCascadesToChildren(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	parent := createCategory(t, r, map[string]interface{}{
		"name": "Mascotas", "type": models.TypeExpense,
	})
	child := createCategory(t, r, map[string]interface{}{
		"name": "Veterinario", "parentId": parent.ID,
	})

	w := doRequest(t, r, "DELETE", "/api/categories/"+parent.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Category{}).
		Where("id IN ?", []string{parent.ID, child.ID}).Count(&count).Error)
	require.Zero(t, count)
}

func TestListCategoriesOrdering(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	createCategory(t, r, map[string]interface{}{
		"name": "Almuerzo", "parentId": "cat_comida",
	})

	var resp struct {
		Categories []models.Category `json:"categories"`
	}
	w := doRequest(t, r, "GET", "/api/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &resp)

	// parents come before children within each type group
	seenParent := map[string]bool{}
	for _, cat := range resp.Categories {
		if cat.ParentID == nil {
			seenParent[cat.ID] = true
		} else {
			require.True(t, seenParent[*cat.ParentID],
				"child %s appeared before its parent", cat.Name)
		}
	}
}
