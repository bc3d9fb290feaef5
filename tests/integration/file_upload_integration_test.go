package integration

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"github.com/shahzaib-autos/shahzaib-autos-api/services"
	"github.com/shahzaib-autos/shahzaib-autos-api/tests/testutil"
	"github.com/shahzaib-autos/shahzaib-autos-api/utils"
	"github.com/stretchr/testify/suite"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// FileUploadIntegrationTestSuite stores product images on local disk and serves them back
type FileUploadIntegrationTestSuite struct {
	suite.Suite
	app       *testutil.App
	uploadDir string
	manager   *http.Cookie
	product   *models.Product
}

func (suite *FileUploadIntegrationTestSuite) SetupTest() {
	suite.app = testutil.NewApp(suite.T(), testutil.BearerAuth())

	originalDir := utils.UploadDir
	suite.uploadDir = suite.T().TempDir()
	services.InitLocalImageService(suite.uploadDir)
	suite.T().Cleanup(func() { utils.UploadDir = originalDir })

	suite.app.CreateAdmin(suite.T(), "manager@shahzaibautos.pk", models.RoleManager)
	suite.manager = suite.app.Login(suite.T(), "manager@shahzaibautos.pk")
	suite.product = suite.app.CreateProduct(suite.T(), "Alloy Rim 15in", 4500, 8)
}

func (suite *FileUploadIntegrationTestSuite) upload(filename string, content []byte, cookie *http.Cookie) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	suite.Require().NoError(err)
	_, err = part.Write(content)
	suite.Require().NoError(err)
	suite.Require().NoError(writer.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/admin/products/%d/image", suite.product.ID), body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	suite.app.Router.ServeHTTP(w, req)
	return w
}

func (suite *FileUploadIntegrationTestSuite) storedFiles() []string {
	entries, err := os.ReadDir(suite.uploadDir)
	suite.Require().NoError(err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func (suite *FileUploadIntegrationTestSuite) TestUploadAndServeProductImage() {
	content := append(append([]byte{}, pngHeader...), []byte("rim photo")...)

	w := suite.upload("rim.png", content, suite.manager)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	product := testutil.Data(suite.T(), w.Body.Bytes())
	imageURL, ok := product["image_url"].(string)
	suite.Require().True(ok, "image_url missing: %s", w.Body.String())
	suite.True(strings.HasPrefix(imageURL, "/api/v1/uploads/"))
	suite.True(strings.HasSuffix(imageURL, ".png"))
	suite.Len(suite.storedFiles(), 1)

	w = suite.app.Do(http.MethodGet, imageURL, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("image/png", w.Header().Get("Content-Type"))
	suite.Equal(content, w.Body.Bytes())

	// the storefront sees the same URL
	w = suite.app.Do(http.MethodGet, "/api/v1/products/alloy-rim-15in", nil)
	suite.Equal(imageURL, testutil.Data(suite.T(), w.Body.Bytes())["image_url"])
}

func (suite *FileUploadIntegrationTestSuite) TestReplacingImageRemovesPreviousFile() {
	suite.Require().Equal(http.StatusOK, suite.upload("front.png", pngHeader, suite.manager).Code)
	first := suite.storedFiles()
	suite.Require().Len(first, 1)

	suite.Require().Equal(http.StatusOK, suite.upload("side.jpg", []byte("jpeg bytes"), suite.manager).Code)
	second := suite.storedFiles()
	suite.Require().Len(second, 1)
	suite.NotEqual(first[0], second[0])
	suite.Equal(".jpg", filepath.Ext(second[0]))
}

func (suite *FileUploadIntegrationTestSuite) TestInvalidFileFormat() {
	w := suite.upload("manual.pdf", []byte("%PDF-1.4"), suite.manager)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("INVALID_FILE_FORMAT", testutil.ErrorCode(suite.T(), w.Body.Bytes()))
	suite.Empty(suite.storedFiles())
}

func (suite *FileUploadIntegrationTestSuite) TestFileTooLarge() {
	w := suite.upload("huge.png", make([]byte, utils.MaxFileSize+1), suite.manager)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("FILE_TOO_LARGE", testutil.ErrorCode(suite.T(), w.Body.Bytes()))
	suite.Empty(suite.storedFiles())
}

func (suite *FileUploadIntegrationTestSuite) TestUploadRequiresProductPermission() {
	suite.app.CreateAdmin(suite.T(), "staff@shahzaibautos.pk", models.RoleStaff)
	staff := suite.app.Login(suite.T(), "staff@shahzaibautos.pk")

	w := suite.upload("rim.png", pngHeader, staff)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.upload("rim.png", pngHeader, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Empty(suite.storedFiles())
}

func (suite *FileUploadIntegrationTestSuite) TestServeMissingOrUnsafeFile() {
	w := suite.app.Do(http.MethodGet, "/api/v1/uploads/nothing-here.png", nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.app.Do(http.MethodGet, "/api/v1/uploads/..secrets.png", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func TestFileUploadIntegrationSuite(t *testing.T) {
	suite.Run(t, new(FileUploadIntegrationTestSuite))
}
