package models

// CategoryKind вариант ссылки на категорию.
type CategoryKind string

const (
	// CategoryNone у подписки нет категории.
	CategoryNone CategoryKind = "none"
	// CategoryAssigned подписка относится к категории из каталога.
	CategoryAssigned CategoryKind = "assigned"
)

// Category ссылка на категорию: либо категория каталога, либо её отсутствие.
// Нулевое значение означает отсутствие категории.
type Category struct {
	Kind CategoryKind `json:"kind"`
	ID   int64        `json:"id,omitempty"`
	Name string       `json:"name,omitempty"`
}

// HasCategory ссылка на категорию каталога.
func HasCategory(id int64, name string) Category {
	return Category{Kind: CategoryAssigned, ID: id, Name: name}
}

// NoCategory отсутствие категории.
func NoCategory() Category {
	return Category{Kind: CategoryNone}
}

// Assigned сообщает, есть ли у подписки категория.
func (c Category) Assigned() bool {
	return c.Kind == CategoryAssigned
}

// FirstCategory возвращает ссылку на первую категорию списка или NoCategory.
func FirstCategory(categories []Category) Category {
	for _, c := range categories {
		if c.Assigned() {
			return c
		}
	}
	return NoCategory()
}

// CompanyKind вариант ссылки на компанию.
type CompanyKind string

const (
	// CompanyNone компания не указана.
	CompanyNone CompanyKind = "none"
	// CompanyFormal компания из каталога.
	CompanyFormal CompanyKind = "formal"
	// CompanyCustom произвольное название, введённое пользователем.
	CompanyCustom CompanyKind = "custom"
)

// Company ссылка на компанию. Нулевое значение означает отсутствие компании.
type Company struct {
	Kind CompanyKind `json:"kind"`
	ID   int64       `json:"id,omitempty"`
	Name string      `json:"name,omitempty"`
}

// FormalCompany ссылка на компанию каталога.
func FormalCompany(id int64, name string) Company {
	return Company{Kind: CompanyFormal, ID: id, Name: name}
}

// CustomCompanyName компания, заданная свободным текстом.
func CustomCompanyName(name string) Company {
	return Company{Kind: CompanyCustom, Name: name}
}

// NoCompany отсутствие компании.
func NoCompany() Company {
	return Company{Kind: CompanyNone}
}

// Formal сообщает, ссылается ли подписка на компанию каталога.
func (c Company) Formal() bool {
	return c.Kind == CompanyFormal
}

// DisplayName название компании для показа, пустая строка если компании нет.
func (c Company) DisplayName() string {
	switch c.Kind {
	case CompanyFormal, CompanyCustom:
		return c.Name
	default:
		return ""
	}
}
