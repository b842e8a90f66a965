package domain

import "time"

// Record is one persisted sales transaction row.
//
// Text columns are nullable, amounts and quantities default to zero and
// dates are nullable calendar days in UTC. Records are append-only.
type Record struct {
	ID         int64     `json:"id"`
	InsertedAt time.Time `json:"insertedAt"`

	VoucherType  *string `json:"voucherType"`
	SalesID      int64   `json:"salesId"`
	StateName    *string `json:"stateName"`
	Zone         *string `json:"zone"`
	BranchName   *string `json:"branchName"`
	Route        *string `json:"route"`
	PartyName    *string `json:"partyName"`
	CategoryName *string `json:"categoryName"`
	PaymentType  *string `json:"paymentType"`

	CreatedDate *time.Time `json:"createdDate"`
	VoucherDate *time.Time `json:"voucherDate"`

	VoucherNo *string `json:"voucherNo"`
	BillType  *string `json:"billType"`
	Salesman  *string `json:"salesman"`

	Taxable          float64 `json:"taxable"`
	CGST             float64 `json:"cgst"`
	SGST             float64 `json:"sgst"`
	IGST             float64 `json:"igst"`
	VoucherAmt       float64 `json:"voucherAmt"`
	Discount         float64 `json:"discount"`
	RealisableAmount float64 `json:"realisableAmount"`
	ReceiveAmt       float64 `json:"receiveAmt"`
	Difference       float64 `json:"difference"`

	RMode     *string `json:"rmode"`
	GroupName *string `json:"groupName"`
	ItemCode  *string `json:"itemCode"`

	TaxPerc    float64 `json:"taxPerc"`
	Qty        int64   `json:"qty"`
	FreeQty    int64   `json:"freeQty"`
	TotalAmt   float64 `json:"totalAmt"`
	FreeAmount float64 `json:"freeAmount"`
	Rate       float64 `json:"rate"`
	DiscAmount float64 `json:"discAmount"`

	Helper1           *string `json:"helper1"`
	KLMTOutlets       *string `json:"klMtOutlets"`
	TNMTOutlets       *string `json:"tnMtOutlets"`
	NewCategory       *string `json:"newCategory"`
	NewSKU            *string `json:"newSku"`
	Division          *string `json:"division"`
	CustomerName      *string `json:"customerName"`
	DistrictMilk      *string `json:"districtMilk"`
	DistrictDashboard *string `json:"districtDashboard"`
	ZoneMT            *string `json:"zoneMt"`
	GroupingItem      *string `json:"groupingItem"`
}
