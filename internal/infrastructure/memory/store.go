package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Negocio-api/internal/application/ports"
	"github.com/jhoicas/Negocio-api/internal/domain/entity"
)

// Store almacenamiento en memoria para desarrollo y pruebas.
// Las unidades de trabajo se serializan con mu: Run trabaja sobre una copia del estado y la
// publica solo si fn termina sin error, así un fallo deja el estado intacto.
type Store struct {
	mu    sync.Mutex
	state *state

	dirMu     sync.RWMutex
	suppliers map[string]entity.Supplier
	customers map[string]entity.Customer
}

type storedLot struct {
	lot entity.InventoryLot
	seq int64
}

type state struct {
	seq           int64
	products      map[string]entity.Product
	lots          map[string]storedLot
	lotsByProduct map[string][]string // índice FIFO por producto: fecha de entrada, luego seq
	movements     []entity.StockMovement
	purchases     map[string]*entity.Purchase
	sales         map[string]*entity.Sale
	order         map[string]int64 // secuencia de creación de compras y ventas
	businesses    map[string]entity.Business
	users         map[string]entity.User
	memberships   []entity.Membership
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		state: &state{
			products:      make(map[string]entity.Product),
			lots:          make(map[string]storedLot),
			lotsByProduct: make(map[string][]string),
			purchases:     make(map[string]*entity.Purchase),
			sales:         make(map[string]*entity.Sale),
			order:         make(map[string]int64),
			businesses:    make(map[string]entity.Business),
			users:         make(map[string]entity.User),
		},
		suppliers: make(map[string]entity.Supplier),
		customers: make(map[string]entity.Customer),
	}
}

func (st *state) clone() *state {
	cp := &state{
		seq:           st.seq,
		products:      make(map[string]entity.Product, len(st.products)),
		lots:          make(map[string]storedLot, len(st.lots)),
		lotsByProduct: make(map[string][]string, len(st.lotsByProduct)),
		movements:     append([]entity.StockMovement(nil), st.movements...),
		purchases:     make(map[string]*entity.Purchase, len(st.purchases)),
		sales:         make(map[string]*entity.Sale, len(st.sales)),
		order:         make(map[string]int64, len(st.order)),
		businesses:    make(map[string]entity.Business, len(st.businesses)),
		users:         make(map[string]entity.User, len(st.users)),
		memberships:   append([]entity.Membership(nil), st.memberships...),
	}
	for k, v := range st.products {
		cp.products[k] = v
	}
	for k, v := range st.lots {
		cp.lots[k] = v
	}
	for k, v := range st.lotsByProduct {
		cp.lotsByProduct[k] = append([]string(nil), v...)
	}
	for k, v := range st.purchases {
		cp.purchases[k] = v.Clone()
	}
	for k, v := range st.sales {
		cp.sales[k] = v.Clone()
	}
	for k, v := range st.order {
		cp.order[k] = v
	}
	for k, v := range st.businesses {
		cp.businesses[k] = v
	}
	for k, v := range st.users {
		cp.users[k] = v
	}
	return cp
}

func (st *state) next() int64 {
	st.seq++
	return st.seq
}

// Run implementa ports.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(r ports.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(reposFor(work)); err != nil {
		return err
	}
	s.state = work
	return nil
}

func reposFor(st *state) ports.Repos {
	return ports.Repos{
		Businesses: &businessRepo{st: st},
		Lots:       &lotRepo{st: st},
		Movements:  &movementRepo{st: st},
		Products:   &productRepo{st: st},
		Purchases:  &purchaseRepo{st: st},
		Sales:      &saleRepo{st: st},
		Users:      &userRepo{st: st},
	}
}

// Products acceso al catálogo fuera de una unidad de trabajo explícita; cada llamada corre en su propia unidad.
func (s *Store) Products() *ProductRepository {
	return &ProductRepository{store: s}
}

// Suppliers directorio de proveedores.
func (s *Store) Suppliers() *SupplierRepository {
	return &SupplierRepository{store: s}
}

// Customers directorio de clientes.
func (s *Store) Customers() *CustomerRepository {
	return &CustomerRepository{store: s}
}
