// Package schema describes the fixed sales-transaction column set and how each
// source column binds onto domain.Record.
package schema

import (
	"errors"
	"fmt"
	"time"

	"github.com/rpattn/salesingest/internal/domain"
)

// Kind is the target type of a source column.
type Kind int

const (
	Text Kind = iota
	Number
	Integer
	Date
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Number:
		return "number"
	case Integer:
		return "integer"
	case Date:
		return "date"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ErrKindMismatch is returned when a value of the wrong Go type is bound to a column.
var ErrKindMismatch = errors.New("value does not match column kind")

// Column is one required source column. Name is the exact header text and
// Field is the storage column name.
type Column struct {
	Name  string
	Field string
	Kind  Kind

	set  func(*domain.Record, any) error
	get  func(*domain.Record) any
	addr func(*domain.Record) any
}

// Set assigns a coerced value to the record field bound to c.
// Text accepts nil or string, Number float64, Integer int64, Date nil or time.Time.
func (c Column) Set(r *domain.Record, v any) error {
	if err := c.set(r, v); err != nil {
		return fmt.Errorf("column %q: %w", c.Name, err)
	}
	return nil
}

// Value reads the bound field as a driver-friendly value (never a pointer).
func (c Column) Value(r *domain.Record) any {
	return c.get(r)
}

// Target returns a scan destination for the bound field.
func (c Column) Target(r *domain.Record) any {
	return c.addr(r)
}

func text(name, field string, ptr func(*domain.Record) **string) Column {
	return Column{
		Name: name, Field: field, Kind: Text,
		addr: func(r *domain.Record) any { return ptr(r) },
		set: func(r *domain.Record, v any) error {
			switch x := v.(type) {
			case nil:
				*ptr(r) = nil
			case string:
				*ptr(r) = &x
			default:
				return fmt.Errorf("%w: %s got %T", ErrKindMismatch, Text, v)
			}
			return nil
		},
		get: func(r *domain.Record) any {
			if p := *ptr(r); p != nil {
				return *p
			}
			return nil
		},
	}
}

func number(name, field string, ptr func(*domain.Record) *float64) Column {
	return Column{
		Name: name, Field: field, Kind: Number,
		addr: func(r *domain.Record) any { return ptr(r) },
		set: func(r *domain.Record, v any) error {
			x, ok := v.(float64)
			if !ok {
				return fmt.Errorf("%w: %s got %T", ErrKindMismatch, Number, v)
			}
			*ptr(r) = x
			return nil
		},
		get: func(r *domain.Record) any { return *ptr(r) },
	}
}

func integer(name, field string, ptr func(*domain.Record) *int64) Column {
	return Column{
		Name: name, Field: field, Kind: Integer,
		addr: func(r *domain.Record) any { return ptr(r) },
		set: func(r *domain.Record, v any) error {
			x, ok := v.(int64)
			if !ok {
				return fmt.Errorf("%w: %s got %T", ErrKindMismatch, Integer, v)
			}
			*ptr(r) = x
			return nil
		},
		get: func(r *domain.Record) any { return *ptr(r) },
	}
}

func date(name, field string, ptr func(*domain.Record) **time.Time) Column {
	return Column{
		Name: name, Field: field, Kind: Date,
		addr: func(r *domain.Record) any { return ptr(r) },
		set: func(r *domain.Record, v any) error {
			switch x := v.(type) {
			case nil:
				*ptr(r) = nil
			case time.Time:
				*ptr(r) = &x
			default:
				return fmt.Errorf("%w: %s got %T", ErrKindMismatch, Date, v)
			}
			return nil
		},
		get: func(r *domain.Record) any {
			if p := *ptr(r); p != nil {
				return *p
			}
			return nil
		},
	}
}

// Columns is the required column set in storage order.
var Columns = []Column{
	text("Voucher Type", "voucher_type", func(r *domain.Record) **string { return &r.VoucherType }),
	integer("ID", "sales_id", func(r *domain.Record) *int64 { return &r.SalesID }),
	text("state_name", "state_name", func(r *domain.Record) **string { return &r.StateName }),
	text("Zone", "zone", func(r *domain.Record) **string { return &r.Zone }),
	text("Branch_name", "branch_name", func(r *domain.Record) **string { return &r.BranchName }),
	text("Route", "route", func(r *domain.Record) **string { return &r.Route }),
	text("PartyName", "party_name", func(r *domain.Record) **string { return &r.PartyName }),
	text("CategoryName", "category_name", func(r *domain.Record) **string { return &r.CategoryName }),
	text("PaymentType", "payment_type", func(r *domain.Record) **string { return &r.PaymentType }),
	date("CreatedDate", "created_date", func(r *domain.Record) **time.Time { return &r.CreatedDate }),
	date("VoucherDate", "voucher_date", func(r *domain.Record) **time.Time { return &r.VoucherDate }),
	text("VoucherNo", "voucher_no", func(r *domain.Record) **string { return &r.VoucherNo }),
	text("Bill Type", "bill_type", func(r *domain.Record) **string { return &r.BillType }),
	text("Salesman", "salesman", func(r *domain.Record) **string { return &r.Salesman }),
	number("Taxable", "taxable", func(r *domain.Record) *float64 { return &r.Taxable }),
	number("CGST", "cgst", func(r *domain.Record) *float64 { return &r.CGST }),
	number("SGST", "sgst", func(r *domain.Record) *float64 { return &r.SGST }),
	number("IGST", "igst", func(r *domain.Record) *float64 { return &r.IGST }),
	number("VoucherAMT", "voucher_amt", func(r *domain.Record) *float64 { return &r.VoucherAmt }),
	number("Discount", "discount", func(r *domain.Record) *float64 { return &r.Discount }),
	number("Realisable amount", "realisable_amount", func(r *domain.Record) *float64 { return &r.RealisableAmount }),
	number("RecieveAMT", "receive_amt", func(r *domain.Record) *float64 { return &r.ReceiveAmt }),
	number("Differance", "difference", func(r *domain.Record) *float64 { return &r.Difference }),
	text("RMODE", "rmode", func(r *domain.Record) **string { return &r.RMode }),
	text("GroupName", "group_name", func(r *domain.Record) **string { return &r.GroupName }),
	text("ItemCOde", "item_code", func(r *domain.Record) **string { return &r.ItemCode }),
	number("TaxPerc", "tax_perc", func(r *domain.Record) *float64 { return &r.TaxPerc }),
	integer("qty", "qty", func(r *domain.Record) *int64 { return &r.Qty }),
	integer("Freeqty", "free_qty", func(r *domain.Record) *int64 { return &r.FreeQty }),
	number("TotalAmt", "total_amt", func(r *domain.Record) *float64 { return &r.TotalAmt }),
	number("FreeAmount", "free_amount", func(r *domain.Record) *float64 { return &r.FreeAmount }),
	number("Rate", "rate", func(r *domain.Record) *float64 { return &r.Rate }),
	number("DiscAmount", "disc_amount", func(r *domain.Record) *float64 { return &r.DiscAmount }),
	text("Helper 1", "helper_1", func(r *domain.Record) **string { return &r.Helper1 }),
	text("KL MT OUTLETS", "kl_mt_outlets", func(r *domain.Record) **string { return &r.KLMTOutlets }),
	text("TN MT OUTLETS", "tn_mt_outlets", func(r *domain.Record) **string { return &r.TNMTOutlets }),
	text("Category", "new_category", func(r *domain.Record) **string { return &r.NewCategory }),
	text("NEW SKU", "new_sku", func(r *domain.Record) **string { return &r.NewSKU }),
	text("Division", "division", func(r *domain.Record) **string { return &r.Division }),
	text("Customer name", "customer_name", func(r *domain.Record) **string { return &r.CustomerName }),
	text("District for milk", "district_milk", func(r *domain.Record) **string { return &r.DistrictMilk }),
	text("District for Dashboard", "district_dashboard", func(r *domain.Record) **string { return &r.DistrictDashboard }),
	text("ZONE FOR MT", "zone_mt", func(r *domain.Record) **string { return &r.ZoneMT }),
	text("GROUPING FOR ITEM", "grouping_item", func(r *domain.Record) **string { return &r.GroupingItem }),
}

// Names returns the header names of cols in order.
func Names(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

// Fields returns the storage column names of cols in order.
func Fields(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Field
	}
	return out
}

// RowValues flattens a record into driver values ordered like cols.
func RowValues(cols []Column, r *domain.Record) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = c.Value(r)
	}
	return out
}

// ScanTargets returns destinations for scanning a row ordered like cols into r.
func ScanTargets(cols []Column, r *domain.Record) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = c.Target(r)
	}
	return out
}

// ByName indexes cols by header name.
func ByName(cols []Column) map[string]Column {
	out := make(map[string]Column, len(cols))
	for _, c := range cols {
		out[c.Name] = c
	}
	return out
}
