package controllers

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yashrajoria/shopswift/services/common/errors"
	"github.com/yashrajoria/shopswift/services/common/validation"
	"github.com/yashrajoria/shopswift/services/product-service/services"
)

const maxImagesPerProduct = 10

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// createProductForm is the multipart body of POST /api/products/add.
type createProductForm struct {
	Name        string   `form:"name" binding:"required,min=1,max=200"`
	Description string   `form:"description" binding:"required,max=5000"`
	Price       *float64 `form:"price" binding:"required,gte=0"`
	Category    string   `form:"category" binding:"required,max=100"`
	Stock       *int     `form:"stock" binding:"required,gte=0"`
	ImageURLs   []string `form:"imageUrls"`
}

func parseCreateProduct(c *gin.Context, maxUploadBytes int64) (services.CreateProductInput, error) {
	var form createProductForm
	if err := c.ShouldBind(&form); err != nil {
		return services.CreateProductInput{}, validation.BindError(err)
	}

	in := services.CreateProductInput{
		Name:        form.Name,
		Description: form.Description,
		Price:       *form.Price,
		Category:    form.Category,
		Stock:       *form.Stock,
	}
	for _, u := range form.ImageURLs {
		if u = strings.TrimSpace(u); u != "" {
			in.ImageURLs = append(in.ImageURLs, u)
		}
	}

	mf, err := c.MultipartForm()
	if err == nil && mf != nil {
		for _, fh := range mf.File["images"] {
			if !isValidImageType(fh) {
				return in, apperrors.BadRequest(fmt.Sprintf("Invalid image type for file %s. Allowed: jpeg, jpg, png, webp, gif", fh.Filename))
			}
			if fh.Size > maxUploadBytes {
				return in, apperrors.BadRequest(fmt.Sprintf("File %s is too large (max %dMB)", fh.Filename, maxUploadBytes>>20))
			}
			in.Uploads = append(in.Uploads, toUpload(fh))
		}
	}

	if len(in.ImageURLs)+len(in.Uploads) > maxImagesPerProduct {
		return in, apperrors.BadRequest(fmt.Sprintf("At most %d images are allowed", maxImagesPerProduct))
	}
	return in, nil
}

func toUpload(fh *multipart.FileHeader) services.ImageUpload {
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return services.ImageUpload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func isValidImageType(file *multipart.FileHeader) bool {
	if allowedImageTypes[file.Header.Get("Content-Type")] {
		return true
	}
	switch strings.ToLower(filepath.Ext(file.Filename)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		return true
	}
	return false
}

func parseListParams(c *gin.Context) (services.ListProductsParams, error) {
	page, limit, err := validation.ParsePagination(c)
	if err != nil {
		return services.ListProductsParams{}, err
	}

	params := services.ListProductsParams{Page: page, Limit: limit}
	params.Query = strings.TrimSpace(c.Query("q"))
	params.Category = strings.TrimSpace(c.Query("category"))

	if params.MinPrice, err = parsePrice(c, "minprice"); err != nil {
		return params, err
	}
	if params.MaxPrice, err = parsePrice(c, "maxprice"); err != nil {
		return params, err
	}
	return params, nil
}

func parsePrice(c *gin.Context, key string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, apperrors.BadRequest(fmt.Sprintf("Invalid %s value", key))
	}
	return &v, nil
}
