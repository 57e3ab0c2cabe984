package store

import (
	"context"
	"path/filepath"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Aashish23092/statement-extraction/dto"
	"github.com/Aashish23092/statement-extraction/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var _ = Describe("BoltStore", func() {
	var (
		ctx   context.Context
		store *BoltStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		store, err = NewBoltStore(filepath.Join(GinkgoT().TempDir(), "runs.db"), zerolog.Nop())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if store != nil {
			store.Close()
		}
	})

	Describe("SaveStatement", func() {
		var result *dto.StatementResult

		BeforeEach(func() {
			debit := decimal.RequireFromString("45.50")
			result = &dto.StatementResult{
				RunID:    "run-1",
				Document: "march.pdf",
				Status:   dto.StatusProcessing,
				Transactions: []dto.Transaction{
					{
						TransactionDate: civil.Date{Year: 2025, Month: 3, Day: 5},
						Description:     "POS PURCHASE",
						DebitAmount:     &debit,
						ConfidenceScore: 1,
					},
				},
				Logs: []dto.LogEntry{{Level: dto.LogInfo, Message: "Processing started"}},
			}
			Expect(store.SaveStatement(ctx, result)).To(Succeed())
		})

		It("should store the run under its ID", func() {
			run, err := store.GetRun("run-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(run.Kind).To(Equal(RunStatement))
			Expect(run.Document).To(Equal("march.pdf"))
			Expect(run.Invoice).To(BeNil())
			Expect(run.Statement.Transactions).To(HaveLen(1))
			Expect(run.Statement.Transactions[0].DebitAmount.String()).To(Equal("45.5"))
			Expect(run.Statement.Transactions[0].TransactionDate).To(Equal(civil.Date{Year: 2025, Month: 3, Day: 5}))
		})

		It("should not copy the in-memory logs into the record", func() {
			run, err := store.GetRun("run-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(run.Statement.Logs).To(BeEmpty())
			Expect(run.Logs).To(BeEmpty())
		})

		When("the run is saved again", func() {
			BeforeEach(func() {
				result.Status = dto.StatusCompleted
				Expect(store.SaveStatement(ctx, result)).To(Succeed())
			})

			It("should replace the stored status", func() {
				run, err := store.GetRun("run-1")
				Expect(err).NotTo(HaveOccurred())
				Expect(run.Statement.Status).To(Equal(dto.StatusCompleted))
			})

			It("should keep a single run", func() {
				runs, err := store.ListRuns()
				Expect(err).NotTo(HaveOccurred())
				Expect(runs).To(HaveLen(1))
			})
		})

		When("the context is cancelled", func() {
			It("should not write", func() {
				cancelled, cancel := context.WithCancel(ctx)
				cancel()
				Expect(store.SaveStatement(cancelled, &dto.StatementResult{RunID: "run-2"})).To(MatchError(context.Canceled))

				_, err := store.GetRun("run-2")
				Expect(err).To(MatchError(dto.ErrRunNotFound))
			})
		})
	})

	Describe("SaveInvoice", func() {
		It("should store a receipt run", func() {
			res := &dto.InvoiceResult{
				RunID:    "run-r",
				Document: "receipt.jpg",
				Invoice:  dto.Invoice{MerchantName: "PANDA RETAIL CO", Currency: dto.DefaultCurrency, Status: dto.InvoiceParsed},
			}
			Expect(store.SaveInvoice(ctx, res)).To(Succeed())

			run, err := store.GetRun("run-r")
			Expect(err).NotTo(HaveOccurred())
			Expect(run.Kind).To(Equal(RunReceipt))
			Expect(run.Statement).To(BeNil())
			Expect(run.Invoice.Invoice.MerchantName).To(Equal("PANDA RETAIL CO"))
		})

		It("should keep a failed receipt run with its audit trail", func() {
			res := &dto.InvoiceResult{
				RunID:    "run-f",
				Document: "blank.png",
				Invoice:  dto.Invoice{Currency: dto.DefaultCurrency, Status: dto.InvoiceFailed},
				Error:    "extraction failed for blank.png: no receipt text could be read",
			}
			Expect(store.SaveInvoice(ctx, res)).To(Succeed())
			logger.Error(store.Sink("run-f"), "Receipt extraction failed", nil)

			run, err := store.GetRun("run-f")
			Expect(err).NotTo(HaveOccurred())
			Expect(run.Invoice.Invoice.Status).To(Equal(dto.InvoiceFailed))
			Expect(run.Invoice.Error).To(ContainSubstring("no receipt text"))
			Expect(run.Logs).To(HaveLen(1))
		})
	})

	Describe("Sink", func() {
		BeforeEach(func() {
			Expect(store.SaveStatement(ctx, &dto.StatementResult{RunID: "run-1"})).To(Succeed())

			sink := store.Sink("run-1")
			logger.Info(sink, "Processing started", nil)
			logger.Warning(sink, "Backend failed", map[string]any{"backend": "ocr-pages"})
			logger.Info(sink, "Processing completed", nil)
			logger.Info(store.Sink("run-other"), "Unrelated", nil)
		})

		It("should return the audit trail in append order", func() {
			run, err := store.GetRun("run-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(run.Logs).To(HaveLen(3))

			var messages []string
			for _, e := range run.Logs {
				messages = append(messages, e.Message)
			}
			Expect(messages).To(Equal([]string{"Processing started", "Backend failed", "Processing completed"}))
		})

		It("should keep levels and details", func() {
			run, err := store.GetRun("run-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(run.Logs[1].Level).To(Equal(dto.LogWarning))
			Expect(run.Logs[1].Details).To(HaveKeyWithValue("backend", "ocr-pages"))
		})
	})

	Describe("GetRun", func() {
		When("the run does not exist", func() {
			It("should return ErrRunNotFound", func() {
				run, err := store.GetRun("missing")
				Expect(err).To(MatchError(dto.ErrRunNotFound))
				Expect(run).To(BeNil())
			})
		})
	})

	Describe("ListRuns", func() {
		It("should list the most recent run first", func() {
			Expect(store.SaveStatement(ctx, &dto.StatementResult{RunID: "older"})).To(Succeed())
			time.Sleep(5 * time.Millisecond)
			Expect(store.SaveInvoice(ctx, &dto.InvoiceResult{RunID: "newer"})).To(Succeed())

			runs, err := store.ListRuns()
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(2))
			Expect(runs[0].ID).To(Equal("newer"))
			Expect(runs[1].ID).To(Equal("older"))
		})
	})
})
