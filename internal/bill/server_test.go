package bill

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/bill-reader/internal/invoice"
)

var _ = Describe("Server", func() {
	var (
		db          *mockDB
		scanner     *mockScanner
		storage     *mockStorage
		service     *Service
		server      *Server
		auth        BasicAuth
		ghttpServer *ghttp.Server
		now         time.Time
	)

	setupServer := func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
		service = NewServiceWithDeps(db, scanner, storage,
			invoice.NewParserWithDeps(invoice.Options{}, &mockIDGenerator{id: "bill-1"}, &mockTimeSource{now: now}))
		server = NewServerWithMux(service, auth, http.NewServeMux())
		ghttpServer = ghttp.NewServer()
		ghttpServer.AppendHandlers(server.ServeHTTP)
	}

	upload := func(filename string, data []byte) (*http.Response, error) {
		var b bytes.Buffer
		writer := multipart.NewWriter(&b)
		part, _ := writer.CreateFormFile("file", filename)
		part.Write(data)
		writer.Close()
		return http.Post(ghttpServer.URL()+"/api/bills", writer.FormDataContentType(), &b)
	}

	readBody := func(resp *http.Response) string {
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return string(body)
	}

	BeforeEach(func() {
		db = newMockDB()
		scanner = newMockScanner()
		storage = newMockStorage()
		auth = BasicAuth{}
		now = time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC)
	})

	JustBeforeEach(func() {
		setupServer()
	})

	AfterEach(func() {
		if ghttpServer != nil {
			ghttpServer.Close()
			ghttpServer = nil
		}
	})

	Describe("handleListBills", func() {
		When("bills exist", func() {
			BeforeEach(func() {
				db.bills["a"] = testBill("a", now)
				db.bills["b"] = testBill("b", now.Add(time.Hour))
			})

			It("returns them newest first as JSON", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/bills")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))

				var bills []*Bill
				Expect(json.Unmarshal([]byte(readBody(resp)), &bills)).To(Succeed())
				Expect(bills).To(HaveLen(2))
				Expect(bills[0].ID).To(Equal("b"))
			})
		})

		When("no bills exist", func() {
			It("returns an empty array", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/bills")
				Expect(err).NotTo(HaveOccurred())
				Expect(strings.TrimSpace(readBody(resp))).To(Equal("[]"))
			})
		})

		When("the database fails", func() {
			BeforeEach(func() {
				db.listErr = errors.New("db down")
			})

			It("returns Internal Server Error", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/bills")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
				Expect(readBody(resp)).To(ContainSubstring("Internal server error"))
			})
		})
	})

	Describe("handleUploadBill", func() {
		When("upload succeeds", func() {
			It("returns Created with the parsed bill", func() {
				resp, err := upload("receipt.jpg", []byte("fake image data"))
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusCreated))

				var bill Bill
				Expect(json.Unmarshal([]byte(readBody(resp)), &bill)).To(Succeed())
				Expect(bill.ID).To(Equal("bill-1"))
				Expect(bill.SourceFile).To(Equal("bill-1_receipt.jpg"))
			})

			It("guesses the content type from the extension", func() {
				resp, err := upload("scan.pdf", []byte("%PDF-1.4"))
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(db.bills["bill-1"].ContentType).To(Equal("application/pdf"))
			})
		})

		When("no file is sent", func() {
			It("returns Bad Request", func() {
				var b bytes.Buffer
				writer := multipart.NewWriter(&b)
				writer.WriteField("note", "no file")
				writer.Close()

				resp, err := http.Post(ghttpServer.URL()+"/api/bills", writer.FormDataContentType(), &b)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(readBody(resp)).To(ContainSubstring("No file was selected"))
			})
		})

		When("the body is not multipart", func() {
			It("returns Bad Request", func() {
				resp, err := http.Post(ghttpServer.URL()+"/api/bills", "text/plain", strings.NewReader("hello"))
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(readBody(resp)).To(ContainSubstring("Error parsing form"))
			})
		})

		When("the scanner fails", func() {
			BeforeEach(func() {
				scanner.scanErr = errors.New("unreadable image")
			})

			It("returns Bad Request with the reason", func() {
				resp, err := upload("receipt.jpg", []byte("x"))
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(readBody(resp)).To(ContainSubstring("unreadable image"))
			})
		})
	})

	Describe("handleSubmitText", func() {
		It("accepts JSON", func() {
			resp, err := http.Post(ghttpServer.URL()+"/api/bills/text", "application/json",
				strings.NewReader(`{"text":"Corner Deli\nBagel 2 3.50 7.00\nTotal $7.00"}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			var bill Bill
			Expect(json.Unmarshal([]byte(readBody(resp)), &bill)).To(Succeed())
			Expect(bill.Total).To(Equal(&invoice.Amount{Cents: 700, Currency: invoice.USD}))
			Expect(bill.Display.Total).To(Equal("$7.00"))
		})

		It("accepts plain text", func() {
			resp, err := http.Post(ghttpServer.URL()+"/api/bills/text", "text/plain; charset=utf-8",
				strings.NewReader("Corner Deli\nTotal $7.00"))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))
			resp.Body.Close()
			Expect(db.bills["bill-1"].Raw).To(Equal("Corner Deli\nTotal $7.00"))
		})

		It("rejects invalid JSON", func() {
			resp, err := http.Post(ghttpServer.URL()+"/api/bills/text", "application/json", strings.NewReader("{"))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			resp.Body.Close()
		})
	})

	Describe("handleGetBill", func() {
		BeforeEach(func() {
			db.bills["bill-1"] = testBill("bill-1", now)
		})

		It("returns the bill", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/bills/bill-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(readBody(resp)).To(ContainSubstring(`"merchant":"Cafe Mocha"`))
		})

		It("returns Not Found for unknown ids", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/bills/missing")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			Expect(readBody(resp)).To(ContainSubstring("Bill not found"))
		})
	})

	Describe("handleGetBillFile", func() {
		BeforeEach(func() {
			db.bills["bill-1"] = testBill("bill-1", now)
			storage.files["bill-1_bill.jpg"] = []byte("jpeg bytes")
		})

		It("serves the stored upload", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/bills/bill-1/file")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("image/jpeg"))
			Expect(readBody(resp)).To(Equal("jpeg bytes"))
		})

		It("returns Not Found for unknown ids", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/bills/missing/file")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			resp.Body.Close()
		})
	})

	Describe("handleExportBill", func() {
		BeforeEach(func() {
			db.bills["bill-1"] = testBill("bill-1", now)
		})

		It("downloads the export as an attachment", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/bills/bill-1/export/tsv")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(HavePrefix("text/tab-separated-values"))
			Expect(resp.Header.Get("Content-Disposition")).To(Equal("attachment; filename=Cafe_Mocha_1709805600000.tsv"))
			Expect(readBody(resp)).To(ContainSubstring("Coffee"))
		})

		It("returns Bad Request for unknown formats", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/bills/bill-1/export/docx")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(readBody(resp)).To(ContainSubstring("Unknown export format"))
		})

		It("returns Not Found for unknown ids", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/bills/missing/export/json")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			resp.Body.Close()
		})
	})

	Describe("handleDeleteBill", func() {
		BeforeEach(func() {
			db.bills["bill-1"] = testBill("bill-1", now)
		})

		It("returns No Content", func() {
			req, _ := http.NewRequest(http.MethodDelete, ghttpServer.URL()+"/api/bills/bill-1", nil)
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			resp.Body.Close()
			Expect(db.bills).To(BeEmpty())
		})

		It("returns Not Found for unknown ids", func() {
			req, _ := http.NewRequest(http.MethodDelete, ghttpServer.URL()+"/api/bills/missing", nil)
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			resp.Body.Close()
		})
	})

	Describe("handleClearBills", func() {
		It("empties the history", func() {
			db.bills["a"] = testBill("a", now)
			req, _ := http.NewRequest(http.MethodDelete, ghttpServer.URL()+"/api/bills", nil)
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			resp.Body.Close()
			Expect(db.bills).To(BeEmpty())
		})
	})

	Describe("CORS", func() {
		It("answers preflight requests", func() {
			req, _ := http.NewRequest(http.MethodOptions, ghttpServer.URL()+"/api/bills", nil)
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
			resp.Body.Close()
		})
	})

	Describe("basic auth", func() {
		BeforeEach(func() {
			auth = BasicAuth{Username: "admin", Password: "secret"}
		})

		It("rejects requests without credentials", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/bills")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(resp.Header.Get("WWW-Authenticate")).To(ContainSubstring("Bill Reader"))
			resp.Body.Close()
		})

		It("rejects wrong credentials", func() {
			req, _ := http.NewRequest(http.MethodGet, ghttpServer.URL()+"/api/bills", nil)
			req.SetBasicAuth("admin", "wrong")
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			resp.Body.Close()
		})

		It("accepts valid credentials", func() {
			req, _ := http.NewRequest(http.MethodGet, ghttpServer.URL()+"/api/bills", nil)
			req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("admin:secret")))
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			resp.Body.Close()
		})
	})
})
