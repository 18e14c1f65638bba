package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"

	domainrepo "github.com/ignatzorin/marketplace-backend/internal/domain/repository"
	"github.com/ignatzorin/marketplace-backend/internal/http/handlers/common"
	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/repository"
	"github.com/ignatzorin/marketplace-backend/internal/storage"
)

// Разрешённые типы файлов для загрузки
var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Разрешённые расширения файлов
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// PhotoHandler управляет изображениями объявлений.
type PhotoHandler struct {
	photos   *repository.PhotoRepository
	listings domainrepo.ListingRepository
	storage  *storage.PhotoStorage
}

// NewPhotoHandler создаёт хэндлер.
func NewPhotoHandler(photos *repository.PhotoRepository, listings domainrepo.ListingRepository, storage *storage.PhotoStorage) *PhotoHandler {
	return &PhotoHandler{photos: photos, listings: listings, storage: storage}
}

// UploadPhoto обрабатывает POST /listings/:id/photos.
func (h *PhotoHandler) UploadPhoto(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	listingID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	listing, err := h.listings.GetByID(c.Request.Context(), listingID)
	if err != nil {
		c.Error(err)
		return
	}
	if !listing.IsOwnedBy(userID) {
		common.RespondForbidden(c, "изображения может загружать только владелец объявления")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		common.RespondBadRequest(c, "поле file обязательно")
		return
	}

	if file.Size == 0 {
		common.RespondBadRequest(c, "файл не может быть пустым")
		return
	}
	if file.Size > h.storage.MaxUploadBytes() {
		common.RespondBadRequest(c, fmt.Sprintf("файл превышает лимит %d МБ", h.storage.MaxUploadBytes()/(1024*1024)))
		return
	}

	// Валидация расширения файла
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		common.RespondBadRequest(c, fmt.Sprintf("неподдерживаемый формат файла. Разрешены: %s", strings.Join(allowedExtensionList(), ", ")))
		return
	}

	src, err := file.Open()
	if err != nil {
		c.Error(err)
		return
	}
	defer src.Close()

	// Читаем первые 512 байт для проверки магических байтов
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		common.RespondBadRequest(c, "не удалось прочитать файл")
		return
	}

	kind, err := filetype.Match(buffer[:n])
	if err != nil || kind == filetype.Unknown {
		common.RespondBadRequest(c, "не удалось определить тип файла. Разрешены только изображения")
		return
	}

	contentType := kind.MIME.Value
	if !allowedMimeTypes[contentType] {
		common.RespondBadRequest(c, fmt.Sprintf("неподдерживаемый тип файла (%s)", contentType))
		return
	}

	// Расширение должно соответствовать реальному типу файла.
	// .jpg и .jpeg - это одно и то же.
	expectedExt := "." + kind.Extension
	if ext != expectedExt && !(ext == ".jpg" && expectedExt == ".jpeg") && !(ext == ".jpeg" && expectedExt == ".jpg") {
		common.RespondBadRequest(c, fmt.Sprintf("расширение файла (%s) не соответствует реальному типу (%s)", ext, expectedExt))
		return
	}

	// Сбрасываем позицию файла для сохранения
	if seeker, ok := src.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			c.Error(err)
			return
		}
	}

	relativePath, size, err := h.storage.Save(c.Request.Context(), listingID, file.Filename, src)
	if err != nil {
		c.Error(err)
		return
	}

	existing, err := h.photos.ListByListing(c.Request.Context(), listingID)
	if err != nil {
		c.Error(err)
		return
	}

	photo := &models.ListingPhoto{
		ListingID: listingID,
		FilePath:  filepath.ToSlash(relativePath),
		FileType:  contentType,
		FileSize:  size,
		Position:  len(existing),
	}

	if err := h.photos.Create(c.Request.Context(), photo); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, photo)
}

// ListPhotos обрабатывает GET /listings/:id/photos.
func (h *PhotoHandler) ListPhotos(c *gin.Context) {
	listingID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	photos, err := h.photos.ListByListing(c.Request.Context(), listingID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"photos": photos})
}

// DeletePhoto обрабатывает DELETE /photos/:id.
func (h *PhotoHandler) DeletePhoto(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	photoID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	photo, err := h.photos.GetByID(c.Request.Context(), photoID)
	if err != nil {
		if errors.Is(err, repository.ErrPhotoNotFound) {
			common.RespondNotFound(c, "изображение не найдено")
			return
		}
		c.Error(err)
		return
	}

	listing, err := h.listings.GetByID(c.Request.Context(), photo.ListingID)
	if err != nil {
		c.Error(err)
		return
	}
	if !listing.IsOwnedBy(userID) {
		common.RespondForbidden(c, "у вас нет прав на удаление этого изображения")
		return
	}

	if err := h.photos.Delete(c.Request.Context(), photoID); err != nil {
		c.Error(err)
		return
	}

	if err := h.storage.Delete(c.Request.Context(), photo.FilePath); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// allowedExtensionList возвращает список разрешённых расширений.
func allowedExtensionList() []string {
	exts := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		exts = append(exts, ext)
	}
	return exts
}
