package core

// Category is the closed taxonomy every transaction must belong to.
// The declared order below is meaningful: it is the presentation order and the
// deterministic tie-break used when two category groups carry the same total.
type Category string

const (
	// Bill-like categories expected to recur every month.
	CategoryAluguel        Category = "Aluguel"
	CategoryAgua           Category = "Água"
	CategoryLuz            Category = "Luz"
	CategoryAcademia       Category = "Academia"
	CategoryInternet       Category = "Internet"
	CategoryPlanoSaude     Category = "Plano de Saúde"
	CategoryTelefone       Category = "Telefone"
	CategoryPrestacaoCarro Category = "Prestação do Carro"
	CategoryPrestacaoMoto  Category = "Prestação Moto"

	// Variable spending.
	CategoryFamilia       Category = "Família e Filhos"
	CategoryPets          Category = "Pets"
	CategoryMercado       Category = "Mercado"
	CategoryCompras       Category = "Compras"
	CategoryAlimentacao   Category = "Alimentação"
	CategoryBares         Category = "Bares e Restaurantes"
	CategorySaude         Category = "Saúde"
	CategoryTrabalho      Category = "Trabalho"
	CategoryDividas       Category = "Dívidas e Empréstimos"
	CategoryAssinaturas   Category = "Assinaturas e Serviços"
	CategoryInvestimentos Category = "Investimentos"
	CategoryCasa          Category = "Casa"
	CategoryViagem        Category = "Viagem"
	CategoryEducacao      Category = "Educação"
	CategoryImpostos      Category = "Impostos e Taxas"
	CategoryLazer         Category = "Lazer e Hobbies"
	CategoryCuidados      Category = "Cuidados Pessoais"
	CategoryDizimo        Category = "Dízimo e Oferta"
	CategoryOutros        Category = "Outros"
	CategoryRoupas        Category = "Roupas"
	CategoryTransporte    Category = "Transporte"
	CategoryPresentes     Category = "Presentes e Doações"

	// Income categories.
	CategorySalario        Category = "Salário"
	CategoryRefeicao       Category = "Refeição"
	CategoryMoradia        Category = "Moradia"
	CategoryOutrasReceitas Category = "Outras Receitas"
)

var categories = []Category{
	CategoryAluguel, CategoryAgua, CategoryLuz, CategoryAcademia, CategoryInternet,
	CategoryPlanoSaude, CategoryTelefone, CategoryPrestacaoCarro, CategoryPrestacaoMoto,
	CategoryFamilia, CategoryPets, CategoryMercado, CategoryCompras, CategoryAlimentacao,
	CategoryBares, CategorySaude, CategoryTrabalho, CategoryDividas, CategoryAssinaturas,
	CategoryInvestimentos, CategoryCasa, CategoryViagem, CategoryEducacao, CategoryImpostos,
	CategoryLazer, CategoryCuidados, CategoryDizimo, CategoryOutros, CategoryRoupas,
	CategoryTransporte, CategoryPresentes,
	CategorySalario, CategoryRefeicao, CategoryMoradia, CategoryOutrasReceitas,
}

var categoryOrder = func() map[Category]int {
	m := make(map[Category]int, len(categories))
	for i, c := range categories {
		m[c] = i
	}
	return m
}()

// Categories returns all categories in declared order. The returned slice is a
// copy; callers may reorder it freely.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// OrderOf returns the declared position of c, or -1 for unknown categories.
func (c Category) OrderOf() int {
	if i, ok := categoryOrder[c]; ok {
		return i
	}
	return -1
}

// Validate reports whether c is a member of the taxonomy.
func (c Category) Validate() error {
	if _, ok := categoryOrder[c]; !ok {
		return ErrUnknownCategory
	}
	return nil
}

// ParseCategory maps a raw string to a known category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}

// DefaultRecurringCategories lists the bill categories seeded as recurring
// obligation templates on first run.
func DefaultRecurringCategories() []Category {
	return []Category{
		CategoryAluguel, CategoryAgua, CategoryLuz, CategoryAcademia, CategoryInternet,
		CategoryPlanoSaude, CategoryTelefone, CategoryPrestacaoCarro, CategoryPrestacaoMoto,
	}
}
