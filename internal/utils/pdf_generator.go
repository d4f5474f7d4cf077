// internal/utils/pdf_generator.go

package utils

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"hotelac/internal/service"
)

// fontFile 中文字体, 随部署放在工作目录
const fontFile = "./SimHei.ttf"

const billTimeLayout = "2006-01-02 15:04:05"

// GenerateBillPDF 把打印视图渲染成 PDF 字节流 (竖向 A4)
func GenerateBillPDF(printable *service.PrintableBill) ([]byte, error) {
	bill := printable.Bill

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	pdf.AddUTF8Font("chinese", "", fontFile)

	// 标题
	pdf.SetFont("chinese", "", 20)
	pdf.Cell(190, 15, "住宿账单")
	pdf.Ln(20)

	// 账单编号与打印日期
	pdf.SetFont("chinese", "", 12)
	pdf.Cell(95, 8, fmt.Sprintf("账单编号: B%d", bill.ID))
	pdf.Cell(95, 8, fmt.Sprintf("打印日期: %s", time.Now().Format(billTimeLayout)))
	pdf.Ln(15)

	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(10)

	// 基本信息
	pdf.Cell(30, 8, "房间号:")
	pdf.SetTextColor(0, 102, 204)
	pdf.Cell(65, 8, fmt.Sprintf("%d", bill.RoomID))
	pdf.SetTextColor(0, 0, 0)
	pdf.Cell(30, 8, "账单状态:")
	pdf.Cell(65, 8, billStatusLabel(bill.Status))
	pdf.Ln(10)

	pdf.Cell(30, 8, "入住时间:")
	pdf.Cell(160, 8, bill.CheckinTime.Format(billTimeLayout))
	pdf.Ln(10)

	pdf.Cell(30, 8, "退房时间:")
	pdf.Cell(160, 8, bill.CheckoutTime.Format(billTimeLayout))
	pdf.Ln(10)

	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(10)

	// 费用小结
	pdf.SetFont("chinese", "", 12)
	pdf.Cell(190, 10, "费用明细")
	pdf.Ln(12)

	pdf.SetFont("chinese", "", 11)
	pdf.Cell(95, 8, "计费单位数:")
	pdf.Cell(95, 8, fmt.Sprintf("%d", bill.StayDays))
	pdf.Ln(8)
	pdf.Cell(95, 8, "住宿费用小计:")
	pdf.Cell(95, 8, fmt.Sprintf("%.2f元", printable.Totals.RoomFee))
	pdf.Ln(8)
	pdf.Cell(95, 8, "空调使用时长:")
	pdf.Cell(95, 8, fmt.Sprintf("%.1f分钟", printable.Totals.ACDurationMinutes))
	pdf.Ln(8)
	pdf.Cell(95, 8, "空调费用小计:")
	pdf.Cell(95, 8, fmt.Sprintf("%.2f元", printable.Totals.ACFee))
	pdf.Ln(12)

	// 空调运行明细表
	drawBillItemTable(pdf, printable.Items)

	pdf.Ln(5)
	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(10)

	// 总计金额
	pdf.SetFont("chinese", "", 14)
	pdf.Cell(95, 10, "应付总额:")
	pdf.SetTextColor(204, 0, 0)
	pdf.Cell(95, 10, fmt.Sprintf("%.2f元", printable.Totals.GrandTotal))
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(15)

	// 备注
	pdf.SetFont("chinese", "", 10)
	pdf.Cell(190, 8, "备注：")
	pdf.Ln(8)
	pdf.Cell(190, 8, "1. 应付总额 = 住宿费用 + 空调费用")
	pdf.Ln(8)
	pdf.Cell(190, 8, "2. 空调费用按服务期间实际温度变化计费")
	pdf.Ln(8)
	pdf.Cell(190, 8, "3. 请保管好此账单，作为缴费凭证")

	// 页脚
	pdf.SetY(-15)
	pdf.SetFont("chinese", "", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.Cell(190, 10, fmt.Sprintf("打印时间: %s    如有疑问请咨询前台", time.Now().Format(billTimeLayout)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("生成账单 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func drawBillItemTable(pdf *gofpdf.Fpdf, items []service.PrintableBillItem) {
	headers := []struct {
		width float64
		name  string
	}{
		{35, "开始时间"},
		{35, "结束时间"},
		{25, "时长(分钟)"},
		{20, "风速"},
		{20, "模式"},
		{25, "费率"},
		{30, "费用"},
	}

	drawHeader := func() {
		pdf.SetFont("chinese", "", 10)
		pdf.SetFillColor(240, 240, 240)
		for _, h := range headers {
			pdf.CellFormat(h.width, 10, h.name, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(10)
		pdf.SetFont("chinese", "", 9)
	}
	drawHeader()

	rowHeight := 8.0
	fill := false
	for _, item := range items {
		// 翻页后补表头
		if pdf.GetY() > 260 {
			pdf.AddPage()
			drawHeader()
		}

		if fill {
			pdf.SetFillColor(249, 249, 249)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		pdf.CellFormat(35, rowHeight, item.StartTime.Format("01-02 15:04:05"), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(35, rowHeight, item.EndTime.Format("01-02 15:04:05"), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(25, rowHeight, fmt.Sprintf("%.1f", item.Duration), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(20, rowHeight, string(item.FanSpeed), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(20, rowHeight, string(item.Mode), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(25, rowHeight, fmt.Sprintf("%.2f元/度", item.Rate), "1", 0, "C", fill, 0, "")
		if item.Cost > 0 {
			pdf.SetTextColor(204, 0, 0)
		}
		pdf.CellFormat(30, rowHeight, fmt.Sprintf("%.2f元", item.Cost), "1", 0, "C", fill, 0, "")
		pdf.SetTextColor(0, 0, 0)

		pdf.Ln(rowHeight)
		fill = !fill
	}
}

func billStatusLabel(status string) string {
	switch status {
	case "PAID":
		return "已结清"
	case "CANCELLED":
		return "已作废"
	default:
		return "未结清"
	}
}
