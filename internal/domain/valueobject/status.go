package valueobject

import "github.com/ignatzorin/marketplace-backend/internal/pkg/apperror"

type ListingStatus string

const (
	ListingStatusActive ListingStatus = "active"
	ListingStatusSold   ListingStatus = "sold"
	ListingStatusClosed ListingStatus = "closed"
)

func (s ListingStatus) IsValid() bool {
	switch s {
	case ListingStatusActive, ListingStatusSold, ListingStatusClosed:
		return true
	}
	return false
}

// CanTransitionTo описывает допустимые переходы статуса объявления.
// sold и closed терминальны: после них новые ставки не принимаются
// и победители не назначаются.
func (s ListingStatus) CanTransitionTo(newStatus ListingStatus) bool {
	transitions := map[ListingStatus][]ListingStatus{
		ListingStatusActive: {ListingStatusSold, ListingStatusClosed},
		ListingStatusSold:   {},
		ListingStatusClosed: {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == newStatus {
			return true
		}
	}
	return false
}

func NewListingStatus(status string) (ListingStatus, error) {
	s := ListingStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус объявления")
	}
	return s, nil
}

type SaleType string

const (
	SaleTypeFixed   SaleType = "fixed"
	SaleTypeOffer   SaleType = "offer"
	SaleTypeAuction SaleType = "auction"
)

func (t SaleType) IsValid() bool {
	switch t {
	case SaleTypeFixed, SaleTypeOffer, SaleTypeAuction:
		return true
	}
	return false
}

// IsCompetitive сообщает, участвует ли тип продажи в конкурентном
// распределении (ранжирование претендентов и назначение победителя).
func (t SaleType) IsCompetitive() bool {
	return t == SaleTypeOffer || t == SaleTypeAuction
}

func NewSaleType(saleType string) (SaleType, error) {
	t := SaleType(saleType)
	if !t.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный тип продажи")
	}
	return t, nil
}

type ListingCategory string

const (
	CategoryItem    ListingCategory = "item"
	CategoryJob     ListingCategory = "job"
	CategoryService ListingCategory = "service"
)

func (c ListingCategory) IsValid() bool {
	switch c {
	case CategoryItem, CategoryJob, CategoryService:
		return true
	}
	return false
}

func NewListingCategory(category string) (ListingCategory, error) {
	c := ListingCategory(category)
	if !c.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректная категория объявления")
	}
	return c, nil
}
