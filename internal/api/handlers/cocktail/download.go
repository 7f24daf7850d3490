package cocktail

import (
	"fmt"
	"net/http"
	"strconv"

	"cocktail-generator/internal/api/middleware"
	"cocktail-generator/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const downloadFailedMessage = "Failed to download image"

// HandleDownloadImage 代為下載模型產生的圖片並以附件回傳
func (h *Handler) HandleDownloadImage(c *gin.Context) {
	ctx, requestID := requestContext(c)

	download, err := h.fetcher.Fetch(ctx, c.Query("url"))
	if err != nil {
		status, code, message := common.StatusFromError(err, downloadFailedMessage)
		if status >= http.StatusInternalServerError {
			common.LogError("圖片下載失敗",
				zap.Error(err),
				zap.String("request_id", requestID),
			)
		}
		_ = c.Error(err)
		common.WriteError(c, status, code, message)
		return
	}

	middleware.AddLogFields(c,
		zap.String("source_format", download.SourceFormat),
		zap.Bool("converted", download.Converted),
	)

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, download.Filename))
	c.Header("Content-Length", strconv.Itoa(len(download.Data)))
	c.Data(http.StatusOK, download.ContentType, download.Data)
}
