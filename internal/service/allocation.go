package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"warehub-core-api/internal/model"
	"warehub-core-api/internal/repository"
)

// ErrInsufficientSupply means the pallet supply cannot cover the
// requested quantity. The check runs before any write, so nothing is
// mutated when it fires.
var ErrInsufficientSupply = errors.New("insufficient pallet supply")

// AllocationEngine moves quantities from pallet supply into boxes under
// capacity bounds. It holds no state of its own; all reads and writes of
// one operation happen inside a single storage transaction.
type AllocationEngine struct {
	stock repository.StockRepository
	slots repository.SlotRepository
}

// NewAllocationEngine creates a new allocation engine. slots is optional;
// when nil, transfers skip the slot registry update.
func NewAllocationEngine(stock repository.StockRepository, slots repository.SlotRepository) *AllocationEngine {
	return &AllocationEngine{
		stock: stock,
		slots: slots,
	}
}

// Stock distributes quantity units of productID from pallet supply
// across boxes. Existing boxes with free space for the product are
// filled first, ascending by id; new boxes are created on demand for the
// remainder, each holding at most max_per_box units. Withdrawal and box
// fills commit as one transaction.
func (e *AllocationEngine) Stock(ctx context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		return repository.ErrInvalidQuantity
	}

	return e.stock.InTx(ctx, func(tx repository.StockTx) error {
		product, err := tx.Product(ctx, productID)
		if err != nil {
			return err
		}

		available, err := tx.TotalAvailable(ctx, productID)
		if err != nil {
			return err
		}
		if available < quantity {
			return ErrInsufficientSupply
		}

		withdrawn, err := tx.Withdraw(ctx, productID, quantity)
		if err != nil {
			return err
		}
		if withdrawn != quantity {
			// Supply was verified inside this transaction; a short
			// withdrawal means the store is inconsistent.
			return fmt.Errorf("withdrew %d of %d requested units", withdrawn, quantity)
		}

		remaining := quantity
		for remaining > 0 {
			box, err := tx.FindBoxWithSpace(ctx, productID)
			if err != nil {
				return err
			}

			if box == nil {
				fill := remaining
				if fill > product.MaxPerBox {
					fill = product.MaxPerBox
				}
				if _, err := tx.CreateBox(ctx, product, fill); err != nil {
					return err
				}
				remaining -= fill
				continue
			}

			fill := box.FreeSpace()
			if fill > remaining {
				fill = remaining
			}
			if err := tx.AddToBox(ctx, box, fill, product); err != nil {
				return err
			}
			remaining -= fill
		}
		return nil
	})
}

// TransferPalletToBox moves quantity units from one pallet into one box,
// all-or-nothing. The pallet must cover the full quantity and the box
// must accept it; on any failure neither side changes. When slotID is
// given the box row records the slot inside the same transaction, and
// the slot registry is updated after commit (it is an external
// collaborator with its own storage).
func (e *AllocationEngine) TransferPalletToBox(ctx context.Context, palletID, boxID int64, quantity int, slotID *string) error {
	if quantity <= 0 {
		return repository.ErrInvalidQuantity
	}

	var boxBarcode string
	err := e.stock.InTx(ctx, func(tx repository.StockTx) error {
		pallet, err := tx.Pallet(ctx, palletID)
		if err != nil {
			return err
		}
		if pallet.Quantity < quantity {
			return ErrInsufficientSupply
		}

		product, err := tx.Product(ctx, pallet.ProductID)
		if err != nil {
			return err
		}

		box, err := tx.Box(ctx, boxID)
		if err != nil {
			return err
		}

		if err := tx.AddToBox(ctx, box, quantity, product); err != nil {
			return err
		}
		if err := tx.DrainPallet(ctx, pallet, quantity); err != nil {
			return err
		}
		if slotID != nil {
			if err := tx.SetBoxSlot(ctx, box.ID, *slotID); err != nil {
				return err
			}
		}

		boxBarcode = box.Barcode
		return nil
	})
	if err != nil {
		return err
	}

	if slotID != nil && e.slots != nil {
		if err := e.slots.AssignBox(ctx, *slotID, boxBarcode, model.SlotBoxWithProducts); err != nil {
			log.Printf("[AllocationEngine] Failed to update slot %s for box %s: %v", *slotID, boxBarcode, err)
		}
	}
	return nil
}
